package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process PersistentStore. Values are copied on the
// way in and out so callers cannot alias stored bytes.
type MemoryStore struct {
	mu   sync.Mutex
	data map[Key][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.data[key]), nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(value)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, key Key, fn func(current []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(clone(m.data[key]))
	if err != nil {
		return err
	}
	if next == nil {
		delete(m.data, key)
		return nil
	}
	m.data[key] = clone(next)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
