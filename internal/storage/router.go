package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Rrens/meeting-buddy/internal/config"
)

// Factory opens a backend from configuration
type Factory func(ctx context.Context, cfg *config.Config) (Backend, error)

// Router manages backend factories and the opened backends
type Router struct {
	factories map[string]Factory
	open      map[string]Backend
	mu        sync.RWMutex
}

// NewRouter creates a new backend router
func NewRouter() *Router {
	return &Router{
		factories: make(map[string]Factory),
		open:      make(map[string]Backend),
	}
}

// Register registers a factory for a backend name
func (r *Router) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Supported returns the registered backend names, sorted
func (r *Router) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the backend with the given name, opening it if needed. An
// already open backend that fails its health check is reopened.
func (r *Router) Open(ctx context.Context, name string, cfg *config.Config) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if backend, ok := r.open[name]; ok {
		if err := backend.HealthCheck(ctx); err == nil {
			return backend, nil
		}
		backend.Close()
		delete(r.open, name)
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %s", name)
	}

	backend, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", name, err)
	}

	r.open[name] = backend
	return backend, nil
}

// CloseAll closes all opened backends
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, backend := range r.open {
		backend.Close()
		delete(r.open, name)
	}
}
