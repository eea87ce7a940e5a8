// Package memory is a process-local storage backend.
package memory

import (
	"context"
	"sync"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// KV is a map-backed storage.Backend
type KV struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty in-memory KV
func New() *KV {
	return &KV{values: make(map[string]string)}
}

// Open is the storage.Factory for the memory backend
func Open(_ context.Context, _ *config.Config) (storage.Backend, error) {
	return New(), nil
}

func (m *KV) Name() string { return "memory" }

func (m *KV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *KV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *KV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys
func (m *KV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *KV) HealthCheck(context.Context) error { return nil }

func (m *KV) Close() error { return nil }
