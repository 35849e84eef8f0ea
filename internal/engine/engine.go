// Package engine reconciles the day's checklist and alert queue against the
// current farm state: active batches, their groups, feed configurations and
// task templates. Reconciliation is idempotent; running it twice with
// unchanged inputs creates nothing new. No failure in here ever halts a
// pass — data gaps mean "nothing to do" and upstream fetch errors degrade to
// empty inputs.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logpkg "github.com/granjaops/taskward/internal/logger"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/scheduler"
	"go.uber.org/zap"
)

// TodoStore is the engine's checklist surface
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByTaskAndDate(ctx context.Context, task, dueDate string) (*models.Todo, error)
}

// PendingStore is the engine's alert-queue surface
type PendingStore interface {
	Create(ctx context.Context, title, actionURL string) (*models.PendingTask, error)
	ExistsForDay(ctx context.Context, title string, day time.Time) (bool, error)
}

// ConfigSource supplies active feed configurations
type ConfigSource interface {
	ListActive(ctx context.Context) ([]*models.FeedConfiguration, error)
}

// TemplateSource supplies active task templates
type TemplateSource interface {
	ListActive(ctx context.Context) ([]*models.TaskTemplate, error)
}

// Snapshot supplies the active batches
type Snapshot interface {
	GetActive(ctx context.Context) ([]*models.Batch, error)
}

// GroupSource supplies the groups owning the batches
type GroupSource interface {
	GetAll(ctx context.Context) ([]*models.Group, error)
}

// TimerRegistry registers recurring daily timers for schedule entries
type TimerRegistry interface {
	Register(entry models.ScheduleEntry)
}

// AlertSink receives freshly created alerts for out-of-band dispatch. A nil
// sink is tolerated; alerts then only land in the pending queue.
type AlertSink interface {
	Publish(ctx context.Context, pending *models.PendingTask) error
}

// Reconciler is the reconciliation engine. It is the exclusive writer of the
// todo and pending-task collections apart from direct user actions.
type Reconciler struct {
	snapshot  Snapshot
	groups    GroupSource
	feeds     ConfigSource
	templates TemplateSource
	todos     TodoStore
	pending   PendingStore
	timers    TimerRegistry
	alerts    AlertSink
	logger    *zap.Logger
	nowFn     func() time.Time
}

// NewReconciler creates a reconciler
func NewReconciler(
	snapshot Snapshot,
	groups GroupSource,
	feeds ConfigSource,
	templates TemplateSource,
	todos TodoStore,
	pending PendingStore,
	timers TimerRegistry,
	alerts AlertSink,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		snapshot:  snapshot,
		groups:    groups,
		feeds:     feeds,
		templates: templates,
		todos:     todos,
		pending:   pending,
		timers:    timers,
		alerts:    alerts,
		logger:    logger,
		nowFn:     time.Now,
	}
}

// Reconcile runs one full pass: for every active batch it resolves the
// applicable schedule entries, ensures today's todos exist, catches up
// entries whose time has already passed and registers their daily timers.
// Batches are processed in snapshot order; within a batch, feed entries
// before template entries.
func (r *Reconciler) Reconcile(ctx context.Context) {
	now := r.nowFn()

	batches, err := r.snapshot.GetActive(ctx)
	if err != nil {
		r.logger.Warn("failed_to_load_active_batches",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		batches = nil
	}

	groupsByID := r.loadGroups(ctx)
	feeds := r.loadFeedConfigs(ctx)
	templates := r.loadTemplates(ctx)

	entryCount := 0
	for _, batch := range batches {
		group, ok := groupsByID[batch.GroupID]
		if !ok {
			// Data-integrity gap, not an error: batch without a group has
			// nothing to schedule.
			r.logger.Debug("skipping_batch_without_group",
				zap.String("batch_id", batch.ID.String()),
			)
			continue
		}

		for _, entry := range resolveEntries(batch, group, feeds, templates) {
			if !entry.HasValidTime() {
				continue
			}

			if err := r.ensureTodo(ctx, entry.Title, now); err != nil {
				r.logger.Error("failed_to_ensure_todo",
					zap.String("title", logpkg.SanitizeTitle(entry.Title)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				continue
			}

			// Catch-up: the time already passed today, fire the trigger
			// decision now instead of waiting a day. HH:mm strings are
			// zero-padded, so lexicographic order is chronological order.
			if entry.Time <= now.Format("15:04") {
				r.trigger(ctx, entry, now)
			}

			r.timers.Register(entry)
			entryCount++
		}
	}

	r.logger.Info("reconciliation_pass_complete",
		zap.Int("batches", len(batches)),
		zap.Int("entries", entryCount),
	)
}

// Run consumes scheduler fire events until the context is cancelled. It is
// the single writer thread for timer-driven mutations.
func (r *Reconciler) Run(ctx context.Context, fires <-chan scheduler.Fire) {
	for {
		select {
		case <-ctx.Done():
			return
		case fire, ok := <-fires:
			if !ok {
				return
			}
			r.HandleFire(ctx, fire.Entry)
		}
	}
}

// HandleFire runs the trigger decision for one fired entry. The todo is
// re-ensured first: after a midnight rollover the fire may be the first
// activity of the new day.
func (r *Reconciler) HandleFire(ctx context.Context, entry models.ScheduleEntry) {
	now := r.nowFn()

	if err := r.ensureTodo(ctx, entry.Title, now); err != nil {
		r.logger.Error("failed_to_ensure_todo_on_fire",
			zap.String("title", logpkg.SanitizeTitle(entry.Title)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}

	r.trigger(ctx, entry, now)
}

// ensureTodo creates today's automatic todo for the title unless one already
// exists. Manual duplicates created by the user are left alone.
func (r *Reconciler) ensureTodo(ctx context.Context, title string, now time.Time) error {
	today := now.Format(models.DueDateLayout)

	existing, err := r.todos.GetByTaskAndDate(ctx, title, today)
	if err != nil {
		return fmt.Errorf("failed to look up todo: %w", err)
	}
	if existing != nil {
		return nil
	}

	todo := &models.Todo{
		Task:        title,
		DueDate:     today,
		IsAutomatic: true,
	}
	if err := r.todos.Create(ctx, todo); err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	r.logger.Debug("created_automatic_todo",
		zap.String("title", logpkg.SanitizeTitle(title)),
		zap.String("due_date", today),
	)
	return nil
}

// trigger is the alert decision: a completed todo suppresses the alert, an
// existing same-day pending task deduplicates it, otherwise a new pending
// task is created and handed to the alert sink.
func (r *Reconciler) trigger(ctx context.Context, entry models.ScheduleEntry, now time.Time) {
	today := now.Format(models.DueDateLayout)

	todo, err := r.todos.GetByTaskAndDate(ctx, entry.Title, today)
	if err != nil {
		r.logger.Error("failed_to_check_todo_completion",
			zap.String("title", logpkg.SanitizeTitle(entry.Title)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}
	if todo != nil && todo.IsCompleted {
		return
	}

	exists, err := r.pending.ExistsForDay(ctx, entry.Title, now)
	if err != nil {
		r.logger.Error("failed_to_check_pending_task",
			zap.String("title", logpkg.SanitizeTitle(entry.Title)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}
	if exists {
		return
	}

	pending, err := r.pending.Create(ctx, entry.Title, entry.ActionURL())
	if err != nil {
		r.logger.Error("failed_to_create_pending_task",
			zap.String("title", logpkg.SanitizeTitle(entry.Title)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return
	}

	r.logger.Info("alert_created",
		zap.String("title", logpkg.SanitizeTitle(pending.Title)),
		zap.Int64("pending_id", pending.ID),
	)

	if r.alerts == nil {
		return
	}
	if err := r.alerts.Publish(ctx, pending); err != nil {
		// Dispatch is a best-effort side channel; the alert is already in
		// the pending queue.
		r.logger.Warn("failed_to_publish_alert",
			zap.Int64("pending_id", pending.ID),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
}

func (r *Reconciler) loadGroups(ctx context.Context) map[uuid.UUID]*models.Group {
	groups, err := r.groups.GetAll(ctx)
	if err != nil {
		r.logger.Warn("failed_to_load_groups",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return map[uuid.UUID]*models.Group{}
	}

	byID := make(map[uuid.UUID]*models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return byID
}

func (r *Reconciler) loadFeedConfigs(ctx context.Context) []*models.FeedConfiguration {
	feeds, err := r.feeds.ListActive(ctx)
	if err != nil {
		r.logger.Warn("failed_to_load_feed_configurations",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return nil
	}
	return feeds
}

func (r *Reconciler) loadTemplates(ctx context.Context) []*models.TaskTemplate {
	templates, err := r.templates.ListActive(ctx)
	if err != nil {
		r.logger.Warn("failed_to_load_task_templates",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return nil
	}
	return templates
}
