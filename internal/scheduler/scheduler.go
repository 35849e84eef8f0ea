// Package scheduler keeps one recurring daily timer per schedule entry.
// Timers are keyed by the entry's (batch, task, time) tuple so repeated
// reconciliation passes replace a live timer instead of stacking a duplicate
// next to it. Firing is delivered as an explicit event carrying only the
// entry identity; the consumer decides against current store state.
package scheduler

import (
	"sync"
	"time"

	"github.com/granjaops/taskward/internal/models"
	"go.uber.org/zap"
)

// Fire is emitted when a registered entry's daily time arrives
type Fire struct {
	Entry models.ScheduleEntry
	At    time.Time
}

// Scheduler is a keyed registry of self-rearming daily timers
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fires  chan Fire
	nowFn  func() time.Time
	closed bool
	logger *zap.Logger
}

// New creates a scheduler. Fire events are buffered; the consumer is the
// single reconciliation loop, which drains them promptly.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		fires:  make(chan Fire, 64),
		nowFn:  time.Now,
		logger: logger,
	}
}

// Fires returns the fire event channel
func (s *Scheduler) Fires() <-chan Fire {
	return s.fires
}

// Register arms a daily timer for the entry. A prior timer under the same
// key is cancelled first. Entries whose time cannot be parsed are skipped
// silently; malformed configuration is not an error condition.
func (s *Scheduler) Register(entry models.ScheduleEntry) {
	hour, minute, err := entry.Clock()
	if err != nil {
		s.logger.Debug("skipping_unparseable_schedule_time",
			zap.String("entry_key", entry.Key()),
			zap.String("time", entry.Time),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	key := entry.Key()
	if prior, ok := s.timers[key]; ok {
		prior.Stop()
	}
	s.arm(key, entry, hour, minute)
}

// Cancel stops and removes the timer for a key. Unknown keys are a no-op.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Close stops every timer and prevents further registration. The fire
// channel stays open; events already buffered can still be drained.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Len returns the number of live timers
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// arm schedules the next occurrence of hour:minute. Caller holds s.mu.
func (s *Scheduler) arm(key string, entry models.ScheduleEntry, hour, minute int) {
	now := s.nowFn()
	next := nextOccurrence(now, hour, minute)
	s.timers[key] = time.AfterFunc(next.Sub(now), func() {
		s.fired(key, entry, hour, minute)
	})
}

// fired re-arms for the following day, then emits the event. Re-arming
// happens under the lock before delivery so a concurrent Register replaces
// the fresh timer, never a dead one.
func (s *Scheduler) fired(key string, entry models.ScheduleEntry, hour, minute int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.arm(key, entry, hour, minute)
	s.mu.Unlock()

	select {
	case s.fires <- Fire{Entry: entry, At: s.nowFn()}:
	default:
		// Consumer stalled and the buffer is full. The trigger logic is
		// idempotent and will catch this entry up on the next pass.
		s.logger.Warn("dropped_schedule_fire",
			zap.String("entry_key", key),
		)
	}
}

// nextOccurrence returns today's hour:minute if still ahead of now, else
// tomorrow's.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
