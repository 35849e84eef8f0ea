package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/granjaops/taskward/internal/database"
)

// PendingHandler serves the unacknowledged alert queue
type PendingHandler struct {
	pendingRepo database.PendingStoreInterface
}

// NewPendingHandler creates a new pending-task handler
func NewPendingHandler(pendingRepo database.PendingStoreInterface) *PendingHandler {
	return &PendingHandler{pendingRepo: pendingRepo}
}

// RegisterRoutes registers pending-task routes on the given router.
// The router should already have the /tasks/pending prefix.
func (h *PendingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPending).Methods("GET")
	r.HandleFunc("/{id}/execute", h.ExecutePending).Methods("POST")
	r.HandleFunc("/{id}", h.DismissPending).Methods("DELETE")
}

// ListPending lists pending alerts oldest first
func (h *PendingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.pendingRepo.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve pending tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// ExecutePending acknowledges a pending alert and hands back its action URL
// so the caller can navigate to the task screen.
func (h *PendingHandler) ExecutePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid pending task ID")
		return
	}

	task, err := h.pendingRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve pending task")
		return
	}
	if task == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Pending task not found")
		return
	}

	if err := h.pendingRepo.Remove(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to remove pending task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":         task.ID,
		"action_url": task.ActionURL,
	})
}

// DismissPending drops a pending alert without executing it
func (h *PendingHandler) DismissPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid pending task ID")
		return
	}

	if err := h.pendingRepo.Remove(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to remove pending task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"dismissed": id})
}
