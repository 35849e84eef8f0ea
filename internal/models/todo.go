package models

import (
	"time"

	"github.com/google/uuid"
)

// DueDateLayout is the calendar-date format used for todo due dates.
// Dates are local; the reconciliation engine only ever compares whole days.
const DueDateLayout = "2006-01-02"

// Todo represents one entry on the daily checklist
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Task        string    `json:"task"`
	DueDate     string    `json:"due_date"`
	IsCompleted bool      `json:"is_completed"`
	IsAutomatic bool      `json:"is_automatic"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PendingTask represents an unacknowledged alert. The ID is the creation
// instant in epoch milliseconds, which keeps the queue naturally ordered.
type PendingTask struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ActionURL string    `json:"action_url"`
	Timestamp time.Time `json:"timestamp"`
}

// SameDay reports whether the pending task was created on the same local
// calendar day as t.
func (p *PendingTask) SameDay(t time.Time) bool {
	return p.Timestamp.Local().Format(DueDateLayout) == t.Local().Format(DueDateLayout)
}
