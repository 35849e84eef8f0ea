package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/queue"
	"go.uber.org/zap"
)

type mockPendingLookup struct {
	getFunc func(ctx context.Context, id int64) (*models.PendingTask, error)
}

func (m *mockPendingLookup) GetByID(ctx context.Context, id int64) (*models.PendingTask, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

type mockNotifier struct {
	sendFunc func(ctx context.Context, title, actionURL string) error
	sent     []string
}

func (m *mockNotifier) Send(ctx context.Context, title, actionURL string) error {
	m.sent = append(m.sent, title)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, title, actionURL)
	}
	return nil
}

type mockMessage struct {
	job      *queue.Job
	acked    bool
	nacked   bool
	requeued bool
}

func (m *mockMessage) GetJob() *queue.Job { return m.job }
func (m *mockMessage) Ack() error         { m.acked = true; return nil }
func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	return nil
}

type mockJobQueue struct {
	enqueued    []*queue.Job
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.enqueued = append(m.enqueued, job)
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}
func (m *mockJobQueue) Close() error                      { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

var (
	_ PendingLookup          = (*mockPendingLookup)(nil)
	_ Notifier               = (*mockNotifier)(nil)
	_ queue.MessageInterface = (*mockMessage)(nil)
	_ queue.JobQueue         = (*mockJobQueue)(nil)
)

func alertJob(pendingID int64) *queue.Job {
	return queue.NewAlertJob(&models.PendingTask{
		ID:        pendingID,
		Title:     "Alimentar Lote A (G1) 🌾",
		ActionURL: "/tasks/execute?batchId=a&lockTask=feed&time=07:00",
		Timestamp: time.Now(),
	})
}

func TestProcessJobDispatchesAlert(t *testing.T) {
	t.Parallel()
	pending := &mockPendingLookup{
		getFunc: func(_ context.Context, id int64) (*models.PendingTask, error) {
			return &models.PendingTask{ID: id, Title: "Alimentar Lote A (G1) 🌾", ActionURL: "/tasks"}, nil
		},
	}
	notifier := &mockNotifier{}
	d := NewAlertDispatcher(pending, notifier, &mockJobQueue{}, zap.NewNop())

	msg := &mockMessage{job: alertJob(1756712345000)}
	if err := d.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}
	if !msg.acked {
		t.Error("message was not acked")
	}
}

func TestProcessJobSkipsAcknowledgedAlert(t *testing.T) {
	t.Parallel()
	pending := &mockPendingLookup{
		getFunc: func(context.Context, int64) (*models.PendingTask, error) {
			return nil, nil
		},
	}
	notifier := &mockNotifier{}
	d := NewAlertDispatcher(pending, notifier, &mockJobQueue{}, zap.NewNop())

	msg := &mockMessage{job: alertJob(1)}
	if err := d.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent %d notifications, want 0", len(notifier.sent))
	}
	if !msg.acked {
		t.Error("message was not acked")
	}
}

func TestProcessJobRequeuesOnSendFailure(t *testing.T) {
	t.Parallel()
	pending := &mockPendingLookup{
		getFunc: func(_ context.Context, id int64) (*models.PendingTask, error) {
			return &models.PendingTask{ID: id, Title: "Alimentar"}, nil
		},
	}
	notifier := &mockNotifier{
		sendFunc: func(context.Context, string, string) error {
			return errors.New("gateway down")
		},
	}
	jq := &mockJobQueue{}
	d := NewAlertDispatcher(pending, notifier, jq, zap.NewNop())

	msg := &mockMessage{job: alertJob(1)}
	if err := d.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob should absorb retryable failure: %v", err)
	}
	if len(jq.enqueued) != 1 {
		t.Fatalf("re-enqueued %d jobs, want 1", len(jq.enqueued))
	}
	retried := jq.enqueued[0]
	if retried.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", retried.RetryCount)
	}
	if retried.NotBefore == nil || !retried.NotBefore.After(time.Now()) {
		t.Error("re-enqueued job should carry a future NotBefore")
	}
	if !msg.acked {
		t.Error("original message was not acked after re-enqueue")
	}
}

func TestProcessJobDeadLettersAfterMaxRetries(t *testing.T) {
	t.Parallel()
	pending := &mockPendingLookup{
		getFunc: func(_ context.Context, id int64) (*models.PendingTask, error) {
			return &models.PendingTask{ID: id, Title: "Alimentar"}, nil
		},
	}
	notifier := &mockNotifier{
		sendFunc: func(context.Context, string, string) error {
			return errors.New("gateway down")
		},
	}
	d := NewAlertDispatcher(pending, notifier, &mockJobQueue{}, zap.NewNop())

	job := alertJob(1)
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := d.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error after max retries")
	}
	if !msg.nacked || msg.requeued {
		t.Errorf("message should be nacked without requeue, got nacked=%v requeue=%v", msg.nacked, msg.requeued)
	}
}

func TestProcessJobDefersNotReadyJob(t *testing.T) {
	t.Parallel()
	notifier := &mockNotifier{}
	jq := &mockJobQueue{}
	d := NewAlertDispatcher(&mockPendingLookup{}, notifier, jq, zap.NewNop())

	job := alertJob(1)
	future := time.Now().Add(time.Hour)
	job.NotBefore = &future
	msg := &mockMessage{job: job}

	if err := d.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("not-ready job should not dispatch")
	}
	// The job must go back on the queue before the delivery is acked, or the
	// alert is gone for good.
	if len(jq.enqueued) != 1 {
		t.Fatalf("re-enqueued %d jobs, want 1", len(jq.enqueued))
	}
	if jq.enqueued[0].ID != job.ID {
		t.Error("deferred job identity changed")
	}
	if !msg.acked {
		t.Error("deferred delivery was not acked")
	}
}

func TestRetriedJobSurvivesRedelivery(t *testing.T) {
	t.Parallel()
	pending := &mockPendingLookup{
		getFunc: func(_ context.Context, id int64) (*models.PendingTask, error) {
			return &models.PendingTask{ID: id, Title: "Alimentar", ActionURL: "/tasks"}, nil
		},
	}
	sendErr := errors.New("gateway down")
	notifier := &mockNotifier{
		sendFunc: func(context.Context, string, string) error { return sendErr },
	}
	jq := &mockJobQueue{}
	d := NewAlertDispatcher(pending, notifier, jq, zap.NewNop())

	// First attempt fails and re-enqueues with a future NotBefore.
	if err := d.ProcessJob(context.Background(), &mockMessage{job: alertJob(1)}); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if len(jq.enqueued) != 1 {
		t.Fatalf("re-enqueued %d jobs, want 1", len(jq.enqueued))
	}

	// The broker redelivers the retry immediately; it is not due yet, so the
	// worker must keep it alive on the queue rather than swallow it.
	redelivery := &mockMessage{job: jq.enqueued[0]}
	if err := d.ProcessJob(context.Background(), redelivery); err != nil {
		t.Fatalf("ProcessJob (redelivery): %v", err)
	}
	if len(jq.enqueued) != 2 {
		t.Fatalf("retry job was dropped: %d enqueues, want 2", len(jq.enqueued))
	}
	if jq.enqueued[1].RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", jq.enqueued[1].RetryCount)
	}

	// Once due, the retry dispatches.
	notifier.sendFunc = nil
	dueJob := *jq.enqueued[1]
	dueJob.NotBefore = nil
	final := &mockMessage{job: &dueJob}
	if err := d.ProcessJob(context.Background(), final); err != nil {
		t.Fatalf("ProcessJob (due retry): %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Errorf("sent %d notifications, want 2 (one failed, one delivered)", len(notifier.sent))
	}
	if !final.acked {
		t.Error("dispatched retry was not acked")
	}
}

func TestProcessJobDropsExpiredAlert(t *testing.T) {
	t.Parallel()
	notifier := &mockNotifier{}
	jq := &mockJobQueue{}
	d := NewAlertDispatcher(&mockPendingLookup{}, notifier, jq, zap.NewNop())

	job := alertJob(1)
	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	msg := &mockMessage{job: job}

	if err := d.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("expired alert should not dispatch")
	}
	if len(jq.enqueued) != 0 {
		t.Error("expired alert should not be re-enqueued")
	}
	if !msg.acked {
		t.Error("expired alert delivery should be acked off the queue")
	}
}

func TestDeferKeepsDeliveryWhenEnqueueFails(t *testing.T) {
	t.Parallel()
	jq := &mockJobQueue{
		enqueueFunc: func(context.Context, *queue.Job) error {
			return errors.New("broker unavailable")
		},
	}
	d := NewAlertDispatcher(&mockPendingLookup{}, &mockNotifier{}, jq, zap.NewNop())

	job := alertJob(1)
	future := time.Now().Add(time.Hour)
	job.NotBefore = &future
	msg := &mockMessage{job: job}

	if err := d.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error when defer enqueue fails")
	}
	if msg.acked {
		t.Error("delivery must not be acked when the defer enqueue fails")
	}
	if !msg.nacked || !msg.requeued {
		t.Errorf("delivery should be nacked back to the broker, got nacked=%v requeue=%v", msg.nacked, msg.requeued)
	}
}

func TestProcessJobRejectsUnknownType(t *testing.T) {
	t.Parallel()
	d := NewAlertDispatcher(&mockPendingLookup{}, &mockNotifier{}, &mockJobQueue{}, zap.NewNop())

	job := alertJob(1)
	job.Type = queue.JobType("mystery")
	msg := &mockMessage{job: job}

	if err := d.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error for unknown job type")
	}
	if !msg.nacked || msg.requeued {
		t.Error("unknown job type should be dead-lettered")
	}
}

func TestRetryDelayGrowth(t *testing.T) {
	t.Parallel()
	if d := retryDelay(0); d != 30*time.Second {
		t.Errorf("retryDelay(0) = %v, want 30s", d)
	}
	if d := retryDelay(2); d != 2*time.Minute {
		t.Errorf("retryDelay(2) = %v, want 2m", d)
	}
	if d := retryDelay(10); d != 10*time.Minute {
		t.Errorf("retryDelay(10) = %v, want cap of 10m", d)
	}
}
