package store

import (
	"context"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{stores: make(map[string]*Store)}
}

func (r *InMemoryRepository) Seed(s Store) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.DefaultLanguage == "" {
		s.DefaultLanguage = "en"
	}
	r.stores[s.ID] = &s
}

func (r *InMemoryRepository) IsOwner(ctx context.Context, storeID, merchantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[storeID]
	if !ok {
		return false, ErrNotFound
	}
	return s.OwnerID == merchantID, nil
}

func (r *InMemoryRepository) DefaultLanguage(ctx context.Context, storeID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[storeID]
	if !ok {
		return "", ErrNotFound
	}
	return s.DefaultLanguage, nil
}
