package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/common"
	"github.com/google/uuid"
)

// NewLocalID returns an identifier for a record created offline. It is
// time-ordered (UUIDv7) and carries common.LocalIDPrefix, so it never
// collides with a backend-assigned identifier.
func NewLocalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return common.LocalIDPrefix + uuid.NewString()
	}
	return common.LocalIDPrefix + id.String()
}

// IsLocalID reports whether id was produced by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, common.LocalIDPrefix)
}

// RecordList is the newest-first list of locally created records of one
// resource type, serialized as a JSON array under a single key.
type RecordList[R models.Record] struct {
	store PersistentStore
	key   Key
}

func NewRecordList[R models.Record](s PersistentStore, key Key) *RecordList[R] {
	return &RecordList[R]{store: s, key: key}
}

func (l *RecordList[R]) Key() Key { return l.key }

// All returns the stored records, newest first.
func (l *RecordList[R]) All(ctx context.Context) ([]R, error) {
	raw, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, err
	}
	return l.decode(raw)
}

// Find returns the record with the given id.
func (l *RecordList[R]) Find(ctx context.Context, id string) (R, bool, error) {
	var zero R
	items, err := l.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.RecordID() == id {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Prepend stores r in front of the list.
func (l *RecordList[R]) Prepend(ctx context.Context, r R) error {
	return l.store.Update(ctx, l.key, func(current []byte) ([]byte, error) {
		items, err := l.decode(current)
		if err != nil {
			return nil, err
		}
		items = append([]R{r}, items...)
		return json.Marshal(items)
	})
}

// Replace swaps the record sharing r's id in place. It reports whether a
// record was found.
func (l *RecordList[R]) Replace(ctx context.Context, r R) (bool, error) {
	found := false
	err := l.store.Update(ctx, l.key, func(current []byte) ([]byte, error) {
		items, err := l.decode(current)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].RecordID() == r.RecordID() {
				items[i] = r
				found = true
				break
			}
		}
		if !found {
			return current, nil
		}
		return json.Marshal(items)
	})
	return found, err
}

// Remove deletes every record with the given id and reports whether any
// was removed. An emptied list stays stored as "[]".
func (l *RecordList[R]) Remove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := l.store.Update(ctx, l.key, func(current []byte) ([]byte, error) {
		items, err := l.decode(current)
		if err != nil {
			return nil, err
		}
		kept := make([]R, 0, len(items))
		for _, it := range items {
			if it.RecordID() == id {
				removed = true
				continue
			}
			kept = append(kept, it)
		}
		if !removed {
			return current, nil
		}
		return json.Marshal(kept)
	})
	return removed, err
}

// Clear drops the whole list.
func (l *RecordList[R]) Clear(ctx context.Context) error {
	return l.store.Remove(ctx, l.key)
}

func (l *RecordList[R]) decode(raw []byte) ([]R, error) {
	if len(raw) == 0 {
		return []R{}, nil
	}
	var items []R
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.key, err)
	}
	if items == nil {
		items = []R{}
	}
	return items, nil
}
