package progress

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemStore implements WeightLogStore and BadgeStore in memory. Used in
// tests and local development without Postgres.
type InMemStore struct {
	mu      sync.Mutex
	nextID  int64
	logs    map[uuid.UUID][]WeightLog
	awarded map[uuid.UUID]map[string]bool
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		logs:    make(map[uuid.UUID][]WeightLog),
		awarded: make(map[uuid.UUID]map[string]bool),
	}
}

func (s *InMemStore) Insert(ctx context.Context, entry *WeightLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	s.logs[entry.UserID] = append(s.logs[entry.UserID], *entry)
	return nil
}

func (s *InMemStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]WeightLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := slices.Clone(s.logs[userID])
	slices.SortFunc(logs, func(a, b WeightLog) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *InMemStore) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.logs[userID])), nil
}

func (s *InMemStore) RecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, entry := range s.logs[userID] {
		if !seen[entry.Date] {
			seen[entry.Date] = true
			dates = append(dates, entry.Date)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (s *InMemStore) Award(ctx context.Context, userID uuid.UUID, badgeKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awarded[userID] == nil {
		s.awarded[userID] = make(map[string]bool)
	}
	if s.awarded[userID][badgeKey] {
		return false, nil
	}
	s.awarded[userID][badgeKey] = true
	return true, nil
}
