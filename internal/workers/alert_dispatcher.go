package workers

import (
	"context"
	"fmt"
	"time"

	logpkg "github.com/granjaops/taskward/internal/logger"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/queue"
	"go.uber.org/zap"
)

// JobProcessor handles one job of a registered type
type JobProcessor func(ctx context.Context, job *queue.Job) error

type processorEntry struct {
	proc      JobProcessor
	withRetry bool
}

// PendingLookup resolves a pending alert by its millisecond id
type PendingLookup interface {
	GetByID(ctx context.Context, id int64) (*models.PendingTask, error)
}

// Notifier delivers a notification for a fired alert
type Notifier interface {
	Send(ctx context.Context, title, actionURL string) error
}

// AlertDispatcher consumes alert dispatch jobs and pushes them through the
// notification dispatcher. Alerts whose pending record has been acknowledged
// by the time the job runs are dropped without a send.
type AlertDispatcher struct {
	pending  PendingLookup
	notifier Notifier
	jobQueue queue.JobQueue // for re-enqueueing with a delay
	logger   *zap.Logger
	registry map[queue.JobType]processorEntry
}

// NewAlertDispatcher creates a dispatcher and registers the alert_dispatch processor.
func NewAlertDispatcher(pending PendingLookup, notifier Notifier, jobQueue queue.JobQueue, logger *zap.Logger) *AlertDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AlertDispatcher{
		pending:  pending,
		notifier: notifier,
		jobQueue: jobQueue,
		logger:   logger,
		registry: make(map[queue.JobType]processorEntry),
	}
	d.RegisterProcessor(queue.JobTypeAlertDispatch, d.ProcessAlertDispatchJob, true)
	return d
}

// RegisterProcessor registers a processor for a job type.
func (d *AlertDispatcher) RegisterProcessor(typ queue.JobType, proc JobProcessor, withRetry bool) {
	d.registry[typ] = processorEntry{proc: proc, withRetry: withRetry}
}

// ProcessAlertDispatchJob sends the notification for one alert job
func (d *AlertDispatcher) ProcessAlertDispatchJob(ctx context.Context, job *queue.Job) error {
	if job.PendingID == 0 {
		return fmt.Errorf("pending_id is required for alert dispatch job")
	}
	d.logger.Info("processing_alert_dispatch_job",
		zap.String("job_id", job.ID.String()),
		zap.Int64("pending_id", job.PendingID),
	)

	pending, err := d.pending.GetByID(ctx, job.PendingID)
	if err != nil {
		return fmt.Errorf("failed to load pending task: %w", err)
	}
	if pending == nil {
		// Acknowledged before the job ran; nothing to surface.
		d.logger.Debug("alert_already_acknowledged",
			zap.Int64("pending_id", job.PendingID))
		return nil
	}

	if err := d.notifier.Send(ctx, pending.Title, pending.ActionURL); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	d.logger.Info("alert_dispatched",
		zap.Int64("pending_id", pending.ID),
		zap.String("title", logpkg.SanitizeTitle(pending.Title)),
	)
	return nil
}

// ProcessJob processes a job based on its type using the processor registry.
func (d *AlertDispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if !job.ShouldProcess() {
		if job.IsExpired() {
			d.logger.Debug("alert_job_expired",
				zap.String("job_id", job.ID.String()),
				zap.Int64("pending_id", job.PendingID),
			)
			if ackErr := msg.Ack(); ackErr != nil {
				d.logger.Warn("failed_to_ack_expired_job",
					zap.String("job_id", job.ID.String()),
					zap.String("error", logpkg.SanitizeError(ackErr)),
				)
			}
			return nil
		}
		return d.deferJob(ctx, msg, job)
	}

	ent, ok := d.registry[job.Type]
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err := ent.proc(ctx, job); err != nil {
		if ent.withRetry {
			return d.handleJobError(ctx, msg, job, err)
		}
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Warn("failed_to_nack_job",
				zap.String("job_id", job.ID.String()),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("alert dispatch failed: %w", err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack alert job: %w", ackErr)
	}
	return nil
}

// deferJob keeps a not-yet-due job alive. The copy is enqueued before the
// delivery is acked; an acked message never comes back, so ack-first would
// lose the alert whenever the enqueue fails. Without queue access the
// delivery is nacked back to the broker instead.
func (d *AlertDispatcher) deferJob(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	fields := []zap.Field{zap.String("job_id", job.ID.String())}
	if job.NotBefore != nil {
		fields = append(fields, zap.Time("not_before", *job.NotBefore))
	}
	d.logger.Debug("alert_job_not_ready", fields...)

	if d.jobQueue == nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Warn("failed_to_nack_job_for_later_processing",
				zap.String("job_id", job.ID.String()),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return nil
	}

	if enqueueErr := d.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Warn("failed_to_nack_job_after_defer_failure",
				zap.String("job_id", job.ID.String()),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("failed to defer alert job: %w", enqueueErr)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		d.logger.Warn("failed_to_ack_deferred_job",
			zap.String("job_id", job.ID.String()),
			zap.String("error", logpkg.SanitizeError(ackErr)),
		)
	}
	return nil
}

// handleJobError retries failed dispatches with a growing delay, dead-lettering
// once retries are exhausted.
func (d *AlertDispatcher) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		d.logger.Error("alert_job_exhausted_retries",
			zap.String("job_id", job.ID.String()),
			zap.Int64("pending_id", job.PendingID),
			zap.Int("max_retries", job.MaxRetries),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Warn("failed_to_nack_job_to_dlq",
				zap.String("job_id", job.ID.String()),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("alert dispatch failed (max retries): %w", err)
	}

	if d.jobQueue != nil {
		notBefore := time.Now().Add(retryDelay(job.RetryCount))
		delayed := *job
		delayed.NotBefore = &notBefore
		delayed.RetryCount = job.RetryCount + 1

		if enqueueErr := d.jobQueue.Enqueue(ctx, &delayed); enqueueErr != nil {
			// Keep the original delivery alive for retry.
			if nackErr := msg.Nack(true); nackErr != nil {
				d.logger.Warn("failed_to_nack_job_after_reenqueue_failure",
					zap.String("job_id", job.ID.String()),
					zap.String("error", logpkg.SanitizeError(nackErr)),
				)
			}
			return fmt.Errorf("alert dispatch failed, re-enqueue failed: %w", enqueueErr)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			d.logger.Warn("failed_to_ack_job_after_reenqueue",
				zap.String("job_id", job.ID.String()),
				zap.String("error", logpkg.SanitizeError(ackErr)),
			)
		}
		d.logger.Info("alert_job_requeued",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", delayed.RetryCount),
			zap.Time("not_before", notBefore),
		)
		return nil
	}

	// No queue access: fall back to immediate redelivery.
	job.IncrementRetry()
	if nackErr := msg.Nack(true); nackErr != nil {
		d.logger.Warn("failed_to_nack_job_for_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("error", logpkg.SanitizeError(nackErr)),
		)
	}
	return fmt.Errorf("alert dispatch failed (will retry): %w", err)
}

// retryDelay doubles per attempt starting at 30s, capped at 10 minutes.
func retryDelay(retryCount int) time.Duration {
	delay := 30 * time.Second << retryCount
	if delay > 10*time.Minute {
		return 10 * time.Minute
	}
	return delay
}
