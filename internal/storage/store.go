// Package storage defines the persistence contract for the hotel's room state.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/hotel/internal/hotel"
)

// ErrShapeMismatch is returned when persisted state does not match the
// configured building shape.
var ErrShapeMismatch = errors.New("stored layout does not match configured shape")

// Store loads and saves complete room-state snapshots.
//
// Implementations seed themselves with an unoccupied layout on first Load and
// return copies, so callers may mutate what Load returns freely.
type Store interface {
	// Load returns the current snapshot.
	Load(ctx context.Context) (*hotel.Layout, error)
	// Save replaces the stored snapshot with l.
	//
	// Precondition: l has the store's layout shape.
	Save(ctx context.Context, l *hotel.Layout) error
}
