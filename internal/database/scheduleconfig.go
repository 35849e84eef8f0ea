package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/granjaops/taskward/internal/models"
)

// FeedConfigRepository handles feed configuration records
type FeedConfigRepository struct {
	db *DB
}

// NewFeedConfigRepository creates a new feed configuration repository
func NewFeedConfigRepository(db *DB) *FeedConfigRepository {
	return &FeedConfigRepository{db: db}
}

// Upsert replaces the configuration for a group type. Only one row per group
// type is kept so the engine's "single active configuration" lookup is
// unambiguous.
func (r *FeedConfigRepository) Upsert(ctx context.Context, cfg *models.FeedConfiguration) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}

	now := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feed_configurations WHERE group_type = $1`, cfg.GroupType); err != nil {
		return fmt.Errorf("failed to replace feed configuration: %w", err)
	}

	query := `
		INSERT INTO feed_configurations (id, group_type, schedule_times, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query, cfg.ID, cfg.GroupType, pq.Array(cfg.ScheduleTimes), cfg.Active, now, now); err != nil {
		return fmt.Errorf("failed to insert feed configuration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed configuration: %w", err)
	}

	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	return nil
}

// ListActive retrieves all active feed configurations
func (r *FeedConfigRepository) ListActive(ctx context.Context) ([]*models.FeedConfiguration, error) {
	return r.list(ctx, true)
}

// List retrieves all feed configurations
func (r *FeedConfigRepository) List(ctx context.Context) ([]*models.FeedConfiguration, error) {
	return r.list(ctx, false)
}

func (r *FeedConfigRepository) list(ctx context.Context, activeOnly bool) ([]*models.FeedConfiguration, error) {
	query := `
		SELECT id, group_type, schedule_times, active, created_at, updated_at
		FROM feed_configurations
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY group_type ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed configurations: %w", err)
	}
	defer rows.Close()

	var configs []*models.FeedConfiguration
	for rows.Next() {
		cfg := &models.FeedConfiguration{}
		err := rows.Scan(
			&cfg.ID,
			&cfg.GroupType,
			pq.Array(&cfg.ScheduleTimes),
			&cfg.Active,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed configuration: %w", err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed configurations: %w", err)
	}

	return configs, nil
}

// TaskTemplateRepository handles generic task template records
type TaskTemplateRepository struct {
	db *DB
}

// NewTaskTemplateRepository creates a new task template repository
func NewTaskTemplateRepository(db *DB) *TaskTemplateRepository {
	return &TaskTemplateRepository{db: db}
}

// Create creates a new task template
func (r *TaskTemplateRepository) Create(ctx context.Context, tpl *models.TaskTemplate) error {
	query := `
		INSERT INTO task_templates (id, title, default_time, task_type, category_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.TaskType == "" {
		tpl.TaskType = models.TaskTypeCustom
	}

	var categoryID any
	if tpl.CategoryID != nil {
		categoryID = *tpl.CategoryID
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tpl.ID,
		tpl.Title,
		tpl.DefaultTime,
		tpl.TaskType,
		categoryID,
		tpl.Active,
		now,
		now,
	).Scan(&tpl.CreatedAt, &tpl.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task template: %w", err)
	}

	return nil
}

// ListActive retrieves all active task templates in creation order
func (r *TaskTemplateRepository) ListActive(ctx context.Context) ([]*models.TaskTemplate, error) {
	return r.listTemplates(ctx, true)
}

// List retrieves all task templates
func (r *TaskTemplateRepository) List(ctx context.Context) ([]*models.TaskTemplate, error) {
	return r.listTemplates(ctx, false)
}

func (r *TaskTemplateRepository) listTemplates(ctx context.Context, activeOnly bool) ([]*models.TaskTemplate, error) {
	query := `
		SELECT id, title, default_time, task_type, category_id, active, created_at, updated_at
		FROM task_templates
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query task templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.TaskTemplate
	for rows.Next() {
		tpl := &models.TaskTemplate{}
		var categoryID uuid.NullUUID
		err := rows.Scan(
			&tpl.ID,
			&tpl.Title,
			&tpl.DefaultTime,
			&tpl.TaskType,
			&categoryID,
			&tpl.Active,
			&tpl.CreatedAt,
			&tpl.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task template: %w", err)
		}
		if categoryID.Valid {
			tpl.CategoryID = &categoryID.UUID
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task templates: %w", err)
	}

	return templates, nil
}
