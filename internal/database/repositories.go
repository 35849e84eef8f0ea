package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/granjaops/taskward/internal/models"
)

// TodoStoreInterface is the checklist surface the reconciliation engine and
// handlers depend on. Mock implementations back the engine tests.
type TodoStoreInterface interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	GetByTaskAndDate(ctx context.Context, task, dueDate string) (*models.Todo, error)
	ListByDate(ctx context.Context, dueDate string) ([]*models.Todo, error)
	Toggle(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PendingStoreInterface is the alert-queue surface
type PendingStoreInterface interface {
	Create(ctx context.Context, title, actionURL string) (*models.PendingTask, error)
	GetByID(ctx context.Context, id int64) (*models.PendingTask, error)
	ExistsForDay(ctx context.Context, title string, day time.Time) (bool, error)
	List(ctx context.Context) ([]*models.PendingTask, error)
	Remove(ctx context.Context, id int64) error
}

// ConfigSourceInterface supplies the read-only schedule configuration
type ConfigSourceInterface interface {
	ListActive(ctx context.Context) ([]*models.FeedConfiguration, error)
}

// TemplateSourceInterface supplies the read-only task templates
type TemplateSourceInterface interface {
	ListActive(ctx context.Context) ([]*models.TaskTemplate, error)
}

// SnapshotInterface supplies the read-only domain snapshot the engine
// reconciles against
type SnapshotInterface interface {
	GetActive(ctx context.Context) ([]*models.Batch, error)
}

// GroupSourceInterface supplies the groups owning the batches
type GroupSourceInterface interface {
	GetAll(ctx context.Context) ([]*models.Group, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TodoStoreInterface      = (*TodoRepository)(nil)
	_ PendingStoreInterface   = (*PendingTaskRepository)(nil)
	_ ConfigSourceInterface   = (*FeedConfigRepository)(nil)
	_ TemplateSourceInterface = (*TaskTemplateRepository)(nil)
	_ SnapshotInterface       = (*BatchRepository)(nil)
	_ GroupSourceInterface    = (*GroupRepository)(nil)
)
