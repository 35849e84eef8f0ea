package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/granjaops/taskward/internal/models"
)

type mockConfigStore struct {
	upsertFunc func(ctx context.Context, cfg *models.FeedConfiguration) error
	listFunc   func(ctx context.Context) ([]*models.FeedConfiguration, error)
}

func (m *mockConfigStore) Upsert(ctx context.Context, cfg *models.FeedConfiguration) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, cfg)
	}
	return nil
}

func (m *mockConfigStore) List(ctx context.Context) ([]*models.FeedConfiguration, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

type mockTemplateStore struct {
	createFunc func(ctx context.Context, tpl *models.TaskTemplate) error
	listFunc   func(ctx context.Context) ([]*models.TaskTemplate, error)
}

func (m *mockTemplateStore) Create(ctx context.Context, tpl *models.TaskTemplate) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tpl)
	}
	return nil
}

func (m *mockTemplateStore) List(ctx context.Context) ([]*models.TaskTemplate, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

var (
	_ ConfigStore   = (*mockConfigStore)(nil)
	_ TemplateStore = (*mockTemplateStore)(nil)
)

func newConfigRouter(configs *mockConfigStore, templates *mockTemplateStore) *mux.Router {
	r := mux.NewRouter()
	h := NewScheduleConfigHandler(configs, templates)
	h.RegisterFeedConfigRoutes(r.PathPrefix("/api/v1/feed-configs").Subrouter())
	h.RegisterTemplateRoutes(r.PathPrefix("/api/v1/task-templates").Subrouter())
	return r
}

func TestUpsertFeedConfig(t *testing.T) {
	t.Parallel()
	var saved *models.FeedConfiguration
	configs := &mockConfigStore{
		upsertFunc: func(_ context.Context, cfg *models.FeedConfiguration) error {
			saved = cfg
			return nil
		},
	}

	body := `{"group_type":"production","schedule_times":["07:00","17:00"],"active":true}`
	req := httptest.NewRequest("PUT", "/api/v1/feed-configs", strings.NewReader(body))
	w := httptest.NewRecorder()
	newConfigRouter(configs, &mockTemplateStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if saved == nil {
		t.Fatal("Upsert was not called")
	}
	if saved.GroupType != models.GroupCategoryProduction {
		t.Errorf("GroupType = %q", saved.GroupType)
	}
	if len(saved.ScheduleTimes) != 2 {
		t.Errorf("ScheduleTimes = %v", saved.ScheduleTimes)
	}
}

func TestUpsertFeedConfigRejectsBadTimes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
	}{
		{"non-time value", `{"group_type":"production","schedule_times":["noon"],"active":true}`},
		{"empty times", `{"group_type":"production","schedule_times":[],"active":true}`},
		{"raw group type", `{"group_type":"Postura Comercial","schedule_times":["07:00"],"active":true}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("PUT", "/api/v1/feed-configs", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newConfigRouter(&mockConfigStore{}, &mockTemplateStore{}).ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCreateTemplate(t *testing.T) {
	t.Parallel()
	var created *models.TaskTemplate
	templates := &mockTemplateStore{
		createFunc: func(_ context.Context, tpl *models.TaskTemplate) error {
			created = tpl
			return nil
		},
	}

	body := `{"title":"Pesagem semanal","default_time":"08:30","task_type":"custom","active":true}`
	req := httptest.NewRequest("POST", "/api/v1/task-templates", strings.NewReader(body))
	w := httptest.NewRecorder()
	newConfigRouter(&mockConfigStore{}, templates).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if created == nil {
		t.Fatal("Create was not called")
	}
	if created.TaskType != models.TaskTypeCustom {
		t.Errorf("TaskType = %q", created.TaskType)
	}
}

func TestCreateTemplateRejectsBadTime(t *testing.T) {
	t.Parallel()
	body := `{"title":"Pesagem","default_time":"8h30","active":true}`
	req := httptest.NewRequest("POST", "/api/v1/task-templates", strings.NewReader(body))
	w := httptest.NewRecorder()
	newConfigRouter(&mockConfigStore{}, &mockTemplateStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
