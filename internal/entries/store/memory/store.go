// Package memory is the per-process entry store used in development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	"lifedash/pkg/platform/sentinel"
)

// Store keeps entries in a map guarded by an RWMutex. It hands out copies so
// callers cannot mutate stored state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*models.Entry
}

func New() *Store {
	return &Store{entries: make(map[string]*models.Entry)}
}

func (s *Store) Create(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; exists {
		return fmt.Errorf("entry %s: %w", entry.ID, sentinel.ErrConflict)
	}
	s.entries[entry.ID] = entry.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
	}
	return entry.Clone(), nil
}

// ListByUser returns the user's entries in a domain, newest first. A limit
// of zero or less returns all of them.
func (s *Store) ListByUser(_ context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Entry
	for _, e := range s.entries {
		if e.UserID == userID && e.Domain == domain {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
