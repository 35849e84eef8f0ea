package queue

import (
	"testing"
	"time"

	"github.com/granjaops/taskward/internal/models"
)

func samplePending() *models.PendingTask {
	return &models.PendingTask{
		ID:        1756712345000,
		Title:     "Alimentar Lote A (G1) 🌾",
		ActionURL: "/tasks/execute?batchId=abc&lockTask=feed&time=07:00",
		Timestamp: time.Now(),
	}
}

func TestNewAlertJob(t *testing.T) {
	t.Parallel()
	pending := samplePending()
	job := NewAlertJob(pending)

	if job.Type != JobTypeAlertDispatch {
		t.Errorf("Type = %q, want %q", job.Type, JobTypeAlertDispatch)
	}
	if job.PendingID != pending.ID {
		t.Errorf("PendingID = %d, want %d", job.PendingID, pending.ID)
	}
	if job.Title != pending.Title {
		t.Errorf("Title = %q, want %q", job.Title, pending.Title)
	}
	if job.ActionURL != pending.ActionURL {
		t.Errorf("ActionURL = %q, want %q", job.ActionURL, pending.ActionURL)
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", job.MaxRetries)
	}
	if job.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("job ID was not assigned")
	}

	if job.NotAfter == nil {
		t.Fatal("NotAfter was not set")
	}
	y, m, d := time.Now().Date()
	ey, em, ed := job.NotAfter.Date()
	if ey != y || em != m || ed != d {
		t.Errorf("NotAfter = %v, want same local day as creation", job.NotAfter)
	}
	if job.NotAfter.Before(job.CreatedAt) {
		t.Errorf("NotAfter %v precedes CreatedAt %v", job.NotAfter, job.CreatedAt)
	}
}

func TestJobShouldProcess(t *testing.T) {
	t.Parallel()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no window", nil, nil, true},
		{"within window", &past, &future, true},
		{"before window", &future, nil, false},
		{"after window", nil, &past, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := NewAlertJob(samplePending())
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobIsExpired(t *testing.T) {
	t.Parallel()
	job := NewAlertJob(samplePending())
	job.NotAfter = nil
	if job.IsExpired() {
		t.Error("job without NotAfter should not be expired")
	}
	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Error("job past NotAfter should be expired")
	}
}

func TestJobRetryAccounting(t *testing.T) {
	t.Parallel()
	job := NewAlertJob(samplePending())
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false at retry %d", i)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Errorf("CanRetry() = true after %d retries", job.RetryCount)
	}
}
