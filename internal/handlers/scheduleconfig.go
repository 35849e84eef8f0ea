package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/validation"
)

// ConfigStore is the feed configuration administration surface
type ConfigStore interface {
	Upsert(ctx context.Context, cfg *models.FeedConfiguration) error
	List(ctx context.Context) ([]*models.FeedConfiguration, error)
}

// TemplateStore is the task template administration surface
type TemplateStore interface {
	Create(ctx context.Context, tpl *models.TaskTemplate) error
	List(ctx context.Context) ([]*models.TaskTemplate, error)
}

// ScheduleConfigHandler administers feed configurations and task templates,
// the admin-console side of the scheduling inputs.
type ScheduleConfigHandler struct {
	configs   ConfigStore
	templates TemplateStore
}

// NewScheduleConfigHandler creates a new schedule configuration handler
func NewScheduleConfigHandler(configs ConfigStore, templates TemplateStore) *ScheduleConfigHandler {
	return &ScheduleConfigHandler{configs: configs, templates: templates}
}

// RegisterFeedConfigRoutes registers feed-config routes; the router should
// carry the /feed-configs prefix
func (h *ScheduleConfigHandler) RegisterFeedConfigRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListFeedConfigs).Methods("GET")
	r.HandleFunc("", h.UpsertFeedConfig).Methods("PUT")
}

// RegisterTemplateRoutes registers task-template routes; the router should
// carry the /task-templates prefix
func (h *ScheduleConfigHandler) RegisterTemplateRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTemplates).Methods("GET")
	r.HandleFunc("", h.CreateTemplate).Methods("POST")
}

// UpsertFeedConfigRequest represents a feed configuration write
type UpsertFeedConfigRequest struct {
	GroupType     string   `json:"group_type" validate:"required,group_category"`
	ScheduleTimes []string `json:"schedule_times" validate:"required,min=1,dive,schedule_time"`
	Active        bool     `json:"active"`
}

// CreateTemplateRequest represents a task template write
type CreateTemplateRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=256"`
	DefaultTime string     `json:"default_time" validate:"required,schedule_time"`
	TaskType    string     `json:"task_type,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Active      bool       `json:"active"`
}

// ListFeedConfigs lists all feed configurations, inactive included
func (h *ScheduleConfigHandler) ListFeedConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve feed configurations")
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

// UpsertFeedConfig replaces the feed configuration for one group category
func (h *ScheduleConfigHandler) UpsertFeedConfig(w http.ResponseWriter, r *http.Request) {
	var req UpsertFeedConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request",
			"group_type must be a normalized category and schedule_times must be HH:mm values")
		return
	}

	cfg := &models.FeedConfiguration{
		GroupType:     models.GroupCategory(req.GroupType),
		ScheduleTimes: req.ScheduleTimes,
		Active:        req.Active,
	}
	if err := h.configs.Upsert(r.Context(), cfg); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save feed configuration")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// ListTemplates lists all task templates, inactive included
func (h *ScheduleConfigHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve task templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// CreateTemplate creates a task template
func (h *ScheduleConfigHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "title and a HH:mm default_time are required")
		return
	}
	if req.TaskType != "" {
		if err := validation.ValidateTaskType(req.TaskType); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	tpl := &models.TaskTemplate{
		Title:       req.Title,
		DefaultTime: req.DefaultTime,
		TaskType:    models.TaskType(req.TaskType),
		CategoryID:  req.CategoryID,
		Active:      req.Active,
	}
	if err := h.templates.Create(r.Context(), tpl); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task template")
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}
