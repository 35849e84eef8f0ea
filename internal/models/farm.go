package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the lifecycle state of a production batch
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "active"
	BatchStatusFinished BatchStatus = "finished"
)

// Batch represents a production batch housed in a group
type Batch struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
	GroupID    uuid.UUID   `json:"group_id"`
	Status     BatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Group represents an aviary group. Type is free text entered by the user
// and is normalized before schedule matching.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupCategory is the canonical classification of a group's free-text type
type GroupCategory string

const (
	GroupCategoryProduction GroupCategory = "production"
	GroupCategoryMales      GroupCategory = "males"
	GroupCategoryBreeders   GroupCategory = "breeders"
)

// NormalizeGroupType maps a free-text group type onto a canonical category by
// case-insensitive substring matching. The "macho" and "reprod"/"matriz"
// checks run before "prod"/"postura" so that e.g. "Machos Reprodutores" lands
// on males rather than production. Unmatched types pass through unchanged.
func NormalizeGroupType(raw string) GroupCategory {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "macho"):
		return GroupCategoryMales
	case strings.Contains(t, "reprod") || strings.Contains(t, "matriz"):
		return GroupCategoryBreeders
	case strings.Contains(t, "prod") || strings.Contains(t, "postura"):
		return GroupCategoryProduction
	}
	return GroupCategory(raw)
}
