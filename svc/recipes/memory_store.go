package recipes

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemStore implements RecipeStore in memory. Used in tests and local
// development without Postgres.
type InMemStore struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]Recipe
}

func NewInMemStore(recipes ...Recipe) *InMemStore {
	s := &InMemStore{recipes: make(map[uuid.UUID]Recipe, len(recipes))}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	return s
}

func (s *InMemStore) List(ctx context.Context, includePremium bool) ([]Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if r.Premium && !includePremium {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Recipe) int {
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (s *InMemStore) Get(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return &r, nil
}
