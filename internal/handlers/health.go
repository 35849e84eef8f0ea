package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness of the service and its dependencies
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler with named dependency checks
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = make(map[string]HealthCheck)
	}
	return &HealthHandler{checks: checks}
}

// RegisterRoutes registers health routes on the given (root) router
func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
}

// Healthz runs all dependency checks; any failure yields 503
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status == http.StatusOK {
		respondJSON(w, status, map[string]any{"status": "ok", "checks": results})
		return
	}
	respondJSONError(w, status, "Service Unavailable", "One or more dependencies are unhealthy")
}

// GetVersion reports the build version
func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"version": Version})
}
