package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/granjaops/taskward/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAlertDispatch asks the worker to surface a pending alert
	// through the notification platform.
	JobTypeAlertDispatch JobType = "alert_dispatch"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	PendingID  int64      `json:"pending_id"`
	Title      string     `json:"title"`
	ActionURL  string     `json:"action_url"`
	NotBefore  *time.Time `json:"not_before,omitempty"`
	NotAfter   *time.Time `json:"not_after,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewAlertJob creates a dispatch job for a freshly created pending task.
// Alerts are scoped to the local day they fired on, so the job carries an
// end-of-day deadline; a backlog redelivered tomorrow is dropped instead of
// surfacing a stale notification.
func NewAlertJob(pending *models.PendingTask) *Job {
	now := time.Now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeAlertDispatch,
		PendingID:  pending.ID,
		Title:      pending.Title,
		ActionURL:  pending.ActionURL,
		NotAfter:   &endOfDay,
		CreatedAt:  now,
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
