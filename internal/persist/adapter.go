// Package persist provides the key-value adapter behind the state store's
// snapshot persistence. Persistence is best-effort: the store treats every
// adapter failure as a lost convenience cache, never as a fatal condition.
package persist

import (
	"context"
	"sync"
)

// Adapter is the storage contract consumed by the state store.
type Adapter interface {
	// Get returns the stored value for key. The second return value is false
	// when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Noop is the adapter used when no storage backend is configured. Every Get
// resolves absent and every Set/Remove succeeds, so code paths referencing
// persistence never fail in a storage-less deployment.
type Noop struct{}

// NewNoop creates a no-op adapter.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Remove(context.Context, string) error              { return nil }

// Memory is a map-backed adapter for tests and single-process runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
