// Package store is the Local Persistent Store: a durable key-value store
// scoped to one operator profile, holding the session token, the principal
// snapshot and one record list per resource type.
//
// All code depends on the PersistentStore interface. SQLiteStore is the
// durable implementation; MemoryStore backs tests.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Key names a stored value. Keys are stable constants; see the Key* values.
type Key string

const (
	KeyToken     Key = "token"
	KeyPrincipal Key = "user"

	KeyProperties    Key = "mockProperties"
	KeyReviews       Key = "mockReviews"
	KeyBlogs         Key = "mockBlogs"
	KeyContacts      Key = "mockContacts"
	KeyVisitRequests Key = "mockVisitRequests"
)

// PersistentStore is a synchronous durable key-value store.
//
// Get returns (nil, nil) when the key is absent. Remove of an absent key is
// not an error. Update runs fn over the current value (nil when absent) and
// stores its result atomically; returning a nil slice removes the key.
type PersistentStore interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
	Update(ctx context.Context, key Key, fn func(current []byte) ([]byte, error)) error
}

// GetJSON decodes the value under key into T. ok is false when absent.
func GetJSON[T any](ctx context.Context, s PersistentStore, key Key) (v T, ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if raw == nil {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON[T any](ctx context.Context, s PersistentStore, key Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
