package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemStore is a SubscriptionStore backed by a map. Used in tests and local
// development without Postgres.
type InMemStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

func NewInMemStore() *InMemStore {
	return &InMemStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *InMemStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	// Return a copy so callers can't mutate stored state.
	return &sub, nil
}

func (s *InMemStore) Save(ctx context.Context, subscription *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[subscription.UserID] = *subscription
	return nil
}
