package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// ReconcileTrigger kicks off one reconciliation pass
type ReconcileTrigger interface {
	Reconcile(ctx context.Context)
}

// ReconcileHandler exposes the manual reconciliation trigger
type ReconcileHandler struct {
	trigger ReconcileTrigger
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(trigger ReconcileTrigger) *ReconcileHandler {
	return &ReconcileHandler{trigger: trigger}
}

// RegisterRoutes registers the reconcile route on the given router
func (h *ReconcileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reconcile", h.TriggerReconcile).Methods("POST")
}

// TriggerReconcile runs a reconciliation pass synchronously. The pass never
// fails outright (degradation is internal), so this always reports accepted.
func (h *ReconcileHandler) TriggerReconcile(w http.ResponseWriter, r *http.Request) {
	h.trigger.Reconcile(r.Context())
	respondJSON(w, http.StatusAccepted, map[string]any{"reconciled": true})
}
