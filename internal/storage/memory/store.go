// Package memory provides a process-local Store. State is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/hotel/internal/hotel"
	"github.com/cory-johannsen/hotel/internal/storage"
)

// Store keeps the room state in memory.
type Store struct {
	mu     sync.RWMutex
	layout *hotel.Layout
}

var _ storage.Store = (*Store)(nil)

// New creates a Store seeded with a copy of seed.
//
// Precondition: seed must be non-nil.
func New(seed *hotel.Layout) *Store {
	return &Store{layout: seed.Clone()}
}

// Load returns a copy of the stored layout.
func (s *Store) Load(_ context.Context) (*hotel.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout.Clone(), nil
}

// Save stores a copy of l.
func (s *Store) Save(_ context.Context, l *hotel.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.layout.SameShape(l) {
		return fmt.Errorf("saving layout: %w", storage.ErrShapeMismatch)
	}
	s.layout = l.Clone()
	return nil
}
