package hotel

import (
	"errors"
	"fmt"
)

// Allocation failure kinds. Use errors.Is against these sentinels.
var (
	// ErrInvalidRequest is returned when the requested count is outside [MinRooms, MaxRooms].
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInsufficientRooms is returned when fewer rooms are free than requested.
	ErrInsufficientRooms = errors.New("insufficient rooms")
	// ErrUnbookable is returned when enough rooms are free but no same-floor
	// or contiguous cross-floor selection exists.
	ErrUnbookable = errors.New("unbookable")
)

// AllocationError carries the counts behind a failed allocation.
type AllocationError struct {
	Kind      error
	Requested int
	Available int
}

func (e *AllocationError) Error() string {
	switch e.Kind {
	case ErrInvalidRequest:
		return fmt.Sprintf("%s: number of rooms must be between %d and %d, got %d",
			e.Kind, MinRooms, MaxRooms, e.Requested)
	case ErrInsufficientRooms:
		return fmt.Sprintf("%s: requested %d, only %d available", e.Kind, e.Requested, e.Available)
	default:
		return fmt.Sprintf("%s: no selection of %d rooms among %d available", e.Kind, e.Requested, e.Available)
	}
}

// Unwrap returns the sentinel kind so errors.Is matches it.
func (e *AllocationError) Unwrap() error {
	return e.Kind
}
