// Package memory holds the default, process-local review store.
package memory

import (
	"context"
	"sync"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

// Store is an append-only slice guarded by a RWMutex. Appends never reorder
// existing entries, so List snapshots preserve insertion order.
type Store struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

// New seeds the store with a copy of initial.
func New(initial []domain.Review) *Store {
	rs := make([]domain.Review, len(initial))
	copy(rs, initial)
	observability.SetStoreSize(len(rs))
	return &Store{reviews: rs}
}

func (s *Store) Append(_ context.Context, r domain.Review) error {
	s.mu.Lock()
	s.reviews = append(s.reviews, r)
	n := len(s.reviews)
	s.mu.Unlock()

	observability.ObserveStore("memory", "append", nil)
	observability.SetStoreSize(n)
	return nil
}

// List returns a capped view of the backing array. Later appends either write past
// the cap or reallocate, so the returned slice never changes underneath the caller.
func (s *Store) List(_ context.Context) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	observability.ObserveStore("memory", "list", nil)
	return s.reviews[:len(s.reviews):len(s.reviews)], nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews), nil
}
