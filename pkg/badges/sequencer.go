package badges

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smartdalle/smartdalle/pkg/logger"
)

// DefaultInterval is the delay between consecutive badge announcements, so a
// batch of unlocks reads as a sequence instead of a pile.
const DefaultInterval = 1500 * time.Millisecond

// Notifier delivers a single badge announcement to the user.
type Notifier interface {
	Deliver(ctx context.Context, badge Badge) error
}

// Sequencer schedules staggered badge announcements. Announcements from one
// Announce call fire DefaultInterval apart; Close cancels everything still
// pending, so no announcement outlives the session that earned it.
type Sequencer struct {
	notifier Notifier
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	timers map[int]*time.Timer
	nextID int
	closed bool
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithInterval overrides the delay between announcements.
// Panics on non-positive values.
func WithInterval(d time.Duration) SequencerOption {
	if d <= 0 {
		panic("badges: interval must be positive")
	}
	return func(s *Sequencer) {
		s.interval = d
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(log *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSequencer creates a sequencer delivering through the given notifier.
// Panics if notifier is nil.
func NewSequencer(notifier Notifier, opts ...SequencerOption) *Sequencer {
	if notifier == nil {
		panic("badges: Notifier is required")
	}

	s := &Sequencer{
		notifier: notifier,
		interval: DefaultInterval,
		log:      slog.Default(),
		timers:   make(map[int]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Announce schedules one announcement per resolvable key, the first firing
// immediately and each following one interval later. Unknown keys are skipped
// without shifting the remaining slots. Returns the number of announcements
// scheduled; zero after Close or for an empty batch.
func (s *Sequencer) Announce(keys []string) int {
	resolved := make([]Badge, 0, len(keys))
	for _, key := range keys {
		badge, ok := Resolve(key)
		if !ok {
			s.log.Debug("skipping unknown badge key", logger.BadgeKey(key))
			continue
		}
		resolved = append(resolved, badge)
	}
	if len(resolved) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	for i, badge := range resolved {
		id := s.nextID
		s.nextID++

		delay := time.Duration(i) * s.interval
		badge := badge
		s.timers[id] = time.AfterFunc(delay, func() {
			s.mu.Lock()
			delete(s.timers, id)
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			if err := s.notifier.Deliver(context.Background(), badge); err != nil {
				s.log.Warn("failed to deliver badge announcement",
					logger.BadgeKey(badge.Key),
					logger.Error(err),
				)
			}
		})
	}

	return len(resolved)
}

// Close cancels all pending announcements and rejects future ones.
// Safe to call multiple times.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of announcements not yet fired.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
