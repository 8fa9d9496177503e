package history

import (
	"context"
	"sort"
	"sync"
	"time"

	id "adopsi/pkg/domain"
)

// InMemoryStore keeps ledger entries in memory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []*Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	stored.ID = s.nextID
	s.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, &stored)
	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	return nil
}

func (s *InMemoryStore) ListByApplication(_ context.Context, applicationID id.ApplicationID) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for _, e := range s.entries {
		if e.ApplicationID == applicationID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
