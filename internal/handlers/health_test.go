package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func newHealthRouter(checks map[string]HealthCheck) *mux.Router {
	r := mux.NewRouter()
	NewHealthHandler(checks).RegisterRoutes(r)
	return r
}

func TestHealthzAllHealthy(t *testing.T) {
	t.Parallel()
	checks := map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"queue":    func(context.Context) error { return nil },
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	newHealthRouter(checks).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHealthzUnhealthyDependency(t *testing.T) {
	t.Parallel()
	checks := map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"queue":    func(context.Context) error { return errors.New("connection refused") },
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	newHealthRouter(checks).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealthzNoChecks(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	newHealthRouter(nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/version", nil)
	w := httptest.NewRecorder()
	newHealthRouter(nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
