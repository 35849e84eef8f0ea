package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/granjaops/taskward/internal/models"
)

type mockBatchStore struct {
	createFunc    func(ctx context.Context, batch *models.Batch) error
	listFunc      func(ctx context.Context) ([]*models.Batch, error)
	setStatusFunc func(ctx context.Context, id uuid.UUID, status models.BatchStatus) error
}

func (m *mockBatchStore) Create(ctx context.Context, batch *models.Batch) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, batch)
	}
	return nil
}

func (m *mockBatchStore) List(ctx context.Context) ([]*models.Batch, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockBatchStore) SetStatus(ctx context.Context, id uuid.UUID, status models.BatchStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return nil
}

type mockGroupStore struct {
	createFunc func(ctx context.Context, group *models.Group) error
	getAllFunc func(ctx context.Context) ([]*models.Group, error)
}

func (m *mockGroupStore) Create(ctx context.Context, group *models.Group) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, group)
	}
	return nil
}

func (m *mockGroupStore) GetAll(ctx context.Context) ([]*models.Group, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx)
	}
	return nil, nil
}

var (
	_ BatchStore = (*mockBatchStore)(nil)
	_ GroupStore = (*mockGroupStore)(nil)
)

func newFarmRouter(batches *mockBatchStore, groups *mockGroupStore) *mux.Router {
	r := mux.NewRouter()
	h := NewFarmHandler(batches, groups)
	h.RegisterBatchRoutes(r.PathPrefix("/api/v1/batches").Subrouter())
	h.RegisterGroupRoutes(r.PathPrefix("/api/v1/groups").Subrouter())
	return r
}

func TestCreateBatchDefaultsToActive(t *testing.T) {
	t.Parallel()
	var created *models.Batch
	batches := &mockBatchStore{
		createFunc: func(_ context.Context, batch *models.Batch) error {
			created = batch
			return nil
		},
	}

	body := fmt.Sprintf(`{"name":"Lote A","group_id":%q}`, uuid.NewString())
	req := httptest.NewRequest("POST", "/api/v1/batches", strings.NewReader(body))
	w := httptest.NewRecorder()
	newFarmRouter(batches, &mockGroupStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if created == nil {
		t.Fatal("Create was not called")
	}
	if created.Status != models.BatchStatusActive {
		t.Errorf("Status = %q, want active", created.Status)
	}
}

func TestSetBatchStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("PATCH", "/api/v1/batches/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"paused"}`))
	w := httptest.NewRecorder()
	newFarmRouter(&mockBatchStore{}, &mockGroupStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSetBatchStatusFinishes(t *testing.T) {
	t.Parallel()
	var gotStatus models.BatchStatus
	batches := &mockBatchStore{
		setStatusFunc: func(_ context.Context, _ uuid.UUID, status models.BatchStatus) error {
			gotStatus = status
			return nil
		},
	}

	req := httptest.NewRequest("PATCH", "/api/v1/batches/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"finished"}`))
	w := httptest.NewRecorder()
	newFarmRouter(batches, &mockGroupStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotStatus != models.BatchStatusFinished {
		t.Errorf("SetStatus called with %q, want finished", gotStatus)
	}
}

func TestCreateGroupKeepsRawType(t *testing.T) {
	t.Parallel()
	var created *models.Group
	groups := &mockGroupStore{
		createFunc: func(_ context.Context, group *models.Group) error {
			created = group
			return nil
		},
	}

	body := `{"name":"Galpão 3","type":"Postura Comercial"}`
	req := httptest.NewRequest("POST", "/api/v1/groups", strings.NewReader(body))
	w := httptest.NewRecorder()
	newFarmRouter(&mockBatchStore{}, groups).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if created == nil {
		t.Fatal("Create was not called")
	}
	if created.Type != "Postura Comercial" {
		t.Errorf("Type = %q; free text must be stored unnormalized", created.Type)
	}
}
