package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// Registry serves every user from one shared store. The store is loaded on
// first use and each user gets a view acting as them.
type Registry struct {
	shared *Store
	loaded bool
	views  map[uuid.UUID]*Store
	mu     sync.RWMutex
}

// NewRegistry creates a new store registry
func NewRegistry(kv storage.KV, linker Linker, opts Options) *Registry {
	return &Registry{
		shared: NewShared(kv, linker, opts),
		views:  make(map[uuid.UUID]*Store),
	}
}

// For returns the view of user, loading the shared store if needed. A
// failed load is not remembered, so the next call retries it.
func (r *Registry) For(ctx context.Context, user domain.User) (*Store, error) {
	r.mu.RLock()
	s, ok := r.views[user.ID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := r.views[user.ID]; ok {
		return s, nil
	}

	if !r.loaded {
		if err := r.shared.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
		r.loaded = true
	}

	s = r.shared.As(user)
	if err := s.enter(ctx); err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	r.views[user.ID] = s
	return s, nil
}

// Evict drops a user's view; the next For restores their selection from storage
func (r *Registry) Evict(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, userID)
}

// Size returns the number of open views
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
