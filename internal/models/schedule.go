package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskType represents the kind of work a schedule entry asks for
type TaskType string

const (
	TaskTypeFeed   TaskType = "feed"
	TaskTypeCustom TaskType = "custom"
)

// FeedConfiguration holds the feeding times for one group category.
// At most one active configuration per category is considered.
type FeedConfiguration struct {
	ID            uuid.UUID     `json:"id"`
	GroupType     GroupCategory `json:"group_type"`
	ScheduleTimes []string      `json:"schedule_times"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TaskTemplate is a generic recurring task definition. A nil CategoryID makes
// the template apply to every batch.
type TaskTemplate struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	DefaultTime string     `json:"default_time"`
	TaskType    TaskType   `json:"task_type"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleSource identifies which configuration produced a schedule entry
type ScheduleSource string

const (
	ScheduleSourceFeed     ScheduleSource = "feed"
	ScheduleSourceTemplate ScheduleSource = "template"
)

// ScheduleEntry is one resolved instance of "this batch, at this time, do
// this task". Entries are recomputed on every reconciliation pass and never
// persisted.
type ScheduleEntry struct {
	BatchID  uuid.UUID      `json:"batch_id"`
	TaskType TaskType       `json:"task_type"`
	Title    string         `json:"title"`
	Time     string         `json:"time"`
	Source   ScheduleSource `json:"source"`
}

// Key identifies the logical (batch, task, time) tuple. The scheduler uses it
// so a re-registered entry replaces its prior timer instead of stacking one.
func (e ScheduleEntry) Key() string {
	return fmt.Sprintf("%s|%s|%s", e.BatchID, e.TaskType, e.Time)
}

// ActionURL builds the deep link the UI opens when the user executes the
// alert. The route is opaque to this service.
func (e ScheduleEntry) ActionURL() string {
	return fmt.Sprintf("/tasks/execute?batchId=%s&lockTask=%s&time=%s", e.BatchID, e.TaskType, e.Time)
}

// HasValidTime reports whether the entry carries an HH:mm time string.
// Entries without a colon are malformed configuration data and are skipped,
// not reported as errors.
func (e ScheduleEntry) HasValidTime() bool {
	return strings.Contains(e.Time, ":")
}

// Clock returns the entry's hour and minute. Only meaningful when
// HasValidTime is true.
func (e ScheduleEntry) Clock() (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", e.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q: %w", e.Time, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
