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

// BatchStore is the batch administration surface
type BatchStore interface {
	Create(ctx context.Context, batch *models.Batch) error
	List(ctx context.Context) ([]*models.Batch, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.BatchStatus) error
}

// GroupStore is the group administration surface
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetAll(ctx context.Context) ([]*models.Group, error)
}

// FarmHandler administers the domain snapshot: groups and their batches
type FarmHandler struct {
	batches BatchStore
	groups  GroupStore
}

// NewFarmHandler creates a new farm administration handler
func NewFarmHandler(batches BatchStore, groups GroupStore) *FarmHandler {
	return &FarmHandler{batches: batches, groups: groups}
}

// RegisterBatchRoutes registers batch routes; the router should carry the
// /batches prefix
func (h *FarmHandler) RegisterBatchRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBatches).Methods("GET")
	r.HandleFunc("", h.CreateBatch).Methods("POST")
	r.HandleFunc("/{id}/status", h.SetBatchStatus).Methods("PATCH")
}

// RegisterGroupRoutes registers group routes; the router should carry the
// /groups prefix
func (h *FarmHandler) RegisterGroupRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListGroups).Methods("GET")
	r.HandleFunc("", h.CreateGroup).Methods("POST")
}

// CreateBatchRequest represents a create batch request
type CreateBatchRequest struct {
	Name       string     `json:"name" validate:"required,min=1,max=256"`
	GroupID    uuid.UUID  `json:"group_id" validate:"required"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
}

// CreateGroupRequest represents a create group request. Type is free text;
// it is normalized at reconciliation time, not on write.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=256"`
	Type string `json:"type" validate:"required,min=1,max=128"`
}

// SetBatchStatusRequest represents a batch status change request
type SetBatchStatusRequest struct {
	Status models.BatchStatus `json:"status" validate:"required"`
}

// ListBatches lists all batches, active and finished
func (h *FarmHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batches.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve batches")
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

// CreateBatch creates an active batch in a group
func (h *FarmHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "name and group_id are required")
		return
	}

	batch := &models.Batch{
		Name:       req.Name,
		GroupID:    req.GroupID,
		CategoryID: req.CategoryID,
		Status:     models.BatchStatusActive,
	}
	if err := h.batches.Create(r.Context(), batch); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create batch")
		return
	}
	respondJSON(w, http.StatusCreated, batch)
}

// SetBatchStatus activates or finishes a batch. Finished batches drop out
// of the next reconciliation pass.
func (h *FarmHandler) SetBatchStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid batch ID")
		return
	}

	var req SetBatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Status != models.BatchStatusActive && req.Status != models.BatchStatusFinished {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "status must be 'active' or 'finished'")
		return
	}

	if err := h.batches.SetStatus(r.Context(), id, req.Status); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Batch not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// ListGroups lists all groups
func (h *FarmHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.GetAll(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve groups")
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// CreateGroup creates a group
func (h *FarmHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	req.Type = validation.SanitizeText(req.Type)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "name and type are required")
		return
	}

	group := &models.Group{
		Name: req.Name,
		Type: req.Type,
	}
	if err := h.groups.Create(r.Context(), group); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create group")
		return
	}
	respondJSON(w, http.StatusCreated, group)
}
