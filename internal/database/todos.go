package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/granjaops/taskward/internal/models"
)

// TodoRepository handles checklist entries. Deduplication is the
// reconciliation engine's responsibility; this layer appends what it is told.
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create appends a new todo with a fresh id
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, task, due_date, is_completed, is_automatic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.Task,
		todo.DueDate,
		todo.IsCompleted,
		todo.IsAutomatic,
		now,
		now,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetByID retrieves a todo by ID
func (r *TodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	query := `
		SELECT id, task, to_char(due_date, 'YYYY-MM-DD'), is_completed, is_automatic, created_at, updated_at
		FROM todos
		WHERE id = $1
	`

	todo := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&todo.ID,
		&todo.Task,
		&todo.DueDate,
		&todo.IsCompleted,
		&todo.IsAutomatic,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// GetByTaskAndDate finds the todo for a (task, due date) pair. Returns nil
// without error when no such todo exists; the engine treats that as "create
// one". When duplicates exist (manual user copies) the oldest wins.
func (r *TodoRepository) GetByTaskAndDate(ctx context.Context, task, dueDate string) (*models.Todo, error) {
	query := `
		SELECT id, task, to_char(due_date, 'YYYY-MM-DD'), is_completed, is_automatic, created_at, updated_at
		FROM todos
		WHERE task = $1 AND due_date = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	todo := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, task, dueDate).Scan(
		&todo.ID,
		&todo.Task,
		&todo.DueDate,
		&todo.IsCompleted,
		&todo.IsAutomatic,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo by task and date: %w", err)
	}

	return todo, nil
}

// ListByDate retrieves all todos due on the given date
func (r *TodoRepository) ListByDate(ctx context.Context, dueDate string) ([]*models.Todo, error) {
	query := `
		SELECT id, task, to_char(due_date, 'YYYY-MM-DD'), is_completed, is_automatic, created_at, updated_at
		FROM todos
		WHERE due_date = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []*models.Todo
	for rows.Next() {
		todo := &models.Todo{}
		err := rows.Scan(
			&todo.ID,
			&todo.Task,
			&todo.DueDate,
			&todo.IsCompleted,
			&todo.IsAutomatic,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// Toggle flips the completion flag. Missing ids are a no-op, not an error.
func (r *TodoRepository) Toggle(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE todos
		SET is_completed = NOT is_completed, updated_at = $2
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to toggle todo: %w", err)
	}

	return nil
}

// Delete removes a todo. Missing ids are a no-op, not an error.
func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todos WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// Count returns the number of stored todos
func (r *TodoRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return count, nil
}
