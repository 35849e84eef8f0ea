package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxStoredEntries is the per-collection cap checked at startup
const DefaultMaxStoredEntries = 500

// Maintainer guards the task store against unbounded growth. When either
// collection exceeds the cap at process start, both are wiped. This is a
// blunt instrument, not an LRU: losing the backlog is accepted over letting
// storage grow forever.
type Maintainer struct {
	db         *DB
	todos      *TodoRepository
	pending    *PendingTaskRepository
	maxEntries int
	logger     *zap.Logger
}

// NewMaintainer creates a maintainer. maxEntries <= 0 falls back to the
// default cap.
func NewMaintainer(db *DB, todos *TodoRepository, pending *PendingTaskRepository, maxEntries int, logger *zap.Logger) *Maintainer {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxStoredEntries
	}
	return &Maintainer{
		db:         db,
		todos:      todos,
		pending:    pending,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Startup runs the growth check. Must be called before the engine or any
// handler touches the store.
func (m *Maintainer) Startup(ctx context.Context) error {
	todoCount, err := m.todos.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count todos for maintenance: %w", err)
	}

	pendingCount, err := m.pending.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending tasks for maintenance: %w", err)
	}

	if !exceedsCap(todoCount, pendingCount, m.maxEntries) {
		m.logger.Debug("task_store_within_cap",
			zap.Int("todo_count", todoCount),
			zap.Int("pending_count", pendingCount),
			zap.Int("max_entries", m.maxEntries),
		)
		return nil
	}

	m.logger.Warn("task_store_cap_exceeded_wiping",
		zap.Int("todo_count", todoCount),
		zap.Int("pending_count", pendingCount),
		zap.Int("max_entries", m.maxEntries),
	)

	if err := m.ClearAllTasks(ctx); err != nil {
		return err
	}

	m.logger.Info("task_store_wiped",
		zap.Int("removed_todos", todoCount),
		zap.Int("removed_pending", pendingCount),
	)
	return nil
}

// ClearAllTasks empties both collections in a single transaction
func (m *Maintainer) ClearAllTasks(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin maintenance transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_tasks`); err != nil {
		return fmt.Errorf("failed to clear pending tasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit maintenance wipe: %w", err)
	}

	return nil
}

// exceedsCap is the wipe decision: either collection strictly above the cap
// triggers it.
func exceedsCap(todoCount, pendingCount, maxEntries int) bool {
	return todoCount > maxEntries || pendingCount > maxEntries
}
