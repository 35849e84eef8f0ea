package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/granjaops/taskward/internal/models"
)

// BatchRepository handles production batch records
type BatchRepository struct {
	db *DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	query := `
		INSERT INTO batches (id, name, category_id, group_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStatusActive
	}

	var categoryID any
	if batch.CategoryID != nil {
		categoryID = *batch.CategoryID
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		batch.ID,
		batch.Name,
		categoryID,
		batch.GroupID,
		batch.Status,
		now,
		now,
	).Scan(&batch.CreatedAt, &batch.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}

	return nil
}

// GetActive retrieves all active batches in creation order. This is the
// batch ordering the reconciliation engine processes.
func (r *BatchRepository) GetActive(ctx context.Context) ([]*models.Batch, error) {
	query := `
		SELECT id, name, category_id, group_id, status, created_at, updated_at
		FROM batches
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.BatchStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// List retrieves all batches
func (r *BatchRepository) List(ctx context.Context) ([]*models.Batch, error) {
	query := `
		SELECT id, name, category_id, group_id, status, created_at, updated_at
		FROM batches
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// SetStatus updates a batch's lifecycle state
func (r *BatchRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.BatchStatus) error {
	query := `UPDATE batches SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("batch not found")
	}

	return nil
}

func scanBatches(rows *sql.Rows) ([]*models.Batch, error) {
	var batches []*models.Batch
	for rows.Next() {
		batch := &models.Batch{}
		var categoryID uuid.NullUUID
		err := rows.Scan(
			&batch.ID,
			&batch.Name,
			&categoryID,
			&batch.GroupID,
			&batch.Status,
			&batch.CreatedAt,
			&batch.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		if categoryID.Valid {
			batch.CategoryID = &categoryID.UUID
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return batches, nil
}

// GroupRepository handles aviary group records
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		group.ID,
		group.Name,
		group.Type,
		now,
		now,
	).Scan(&group.CreatedAt, &group.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetAll retrieves all groups
func (r *GroupRepository) GetAll(ctx context.Context) ([]*models.Group, error) {
	query := `
		SELECT id, name, type, created_at, updated_at
		FROM groups
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		err := rows.Scan(&group.ID, &group.Name, &group.Type, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}
