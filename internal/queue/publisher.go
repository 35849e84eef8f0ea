package queue

import (
	"context"
	"fmt"

	"github.com/granjaops/taskward/internal/models"
)

// AlertPublisher turns newly created pending tasks into dispatch jobs on the
// job queue. It is the bridge between the reconciliation engine and the
// alert worker.
type AlertPublisher struct {
	queue JobQueue
}

// NewAlertPublisher creates a publisher backed by the given queue
func NewAlertPublisher(q JobQueue) *AlertPublisher {
	return &AlertPublisher{queue: q}
}

// Publish enqueues an alert dispatch job for the pending task
func (p *AlertPublisher) Publish(ctx context.Context, pending *models.PendingTask) error {
	if pending == nil {
		return fmt.Errorf("pending task is nil")
	}
	job := NewAlertJob(pending)
	if err := p.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue alert job: %w", err)
	}
	return nil
}
