package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/granjaops/taskward/internal/models"
)

// PendingTaskRepository handles the unacknowledged alert queue
type PendingTaskRepository struct {
	db *DB
}

// NewPendingTaskRepository creates a new pending task repository
func NewPendingTaskRepository(db *DB) *PendingTaskRepository {
	return &PendingTaskRepository{db: db}
}

// Create appends a new pending task. The id is the creation instant in epoch
// milliseconds; equal instants bump forward a millisecond so the primary key
// stays unique even when two alerts fire in the same tick.
func (r *PendingTaskRepository) Create(ctx context.Context, title, actionURL string) (*models.PendingTask, error) {
	now := time.Now()
	pending := &models.PendingTask{
		ID:        now.UnixMilli(),
		Title:     title,
		ActionURL: actionURL,
		Timestamp: now,
	}

	query := `
		INSERT INTO pending_tasks (id, title, action_url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	for {
		_, err := r.db.ExecContext(ctx, query, pending.ID, pending.Title, pending.ActionURL, pending.Timestamp)
		if err == nil {
			return pending, nil
		}
		if isUniqueViolation(err) {
			pending.ID++
			continue
		}
		return nil, fmt.Errorf("failed to create pending task: %w", err)
	}
}

// GetByID retrieves a pending task. Returns nil without error when missing.
func (r *PendingTaskRepository) GetByID(ctx context.Context, id int64) (*models.PendingTask, error) {
	query := `
		SELECT id, title, action_url, created_at
		FROM pending_tasks
		WHERE id = $1
	`

	pending := &models.PendingTask{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pending.ID,
		&pending.Title,
		&pending.ActionURL,
		&pending.Timestamp,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending task: %w", err)
	}

	return pending, nil
}

// ExistsForDay reports whether a pending task with this title was created on
// the same local calendar day as day.
func (r *PendingTaskRepository) ExistsForDay(ctx context.Context, title string, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM pending_tasks
			WHERE title = $1 AND created_at >= $2 AND created_at < $3
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending task existence: %w", err)
	}

	return exists, nil
}

// List retrieves all pending tasks, oldest first
func (r *PendingTaskRepository) List(ctx context.Context) ([]*models.PendingTask, error) {
	query := `
		SELECT id, title, action_url, created_at
		FROM pending_tasks
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.PendingTask
	for rows.Next() {
		pending := &models.PendingTask{}
		if err := rows.Scan(&pending.ID, &pending.Title, &pending.ActionURL, &pending.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan pending task: %w", err)
		}
		tasks = append(tasks, pending)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending tasks: %w", err)
	}

	return tasks, nil
}

// Remove deletes a pending task. Missing ids are a no-op, not an error.
func (r *PendingTaskRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM pending_tasks WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to remove pending task: %w", err)
	}

	return nil
}

// Count returns the number of stored pending tasks
func (r *PendingTaskRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return count, nil
}
