// Package hotel models the building layout and implements the room
// allocation algorithm used by the booking service.
package hotel

import "fmt"

// Default building shape: ten floors of ten rooms, the top floor holding seven.
const (
	DefaultTotalRooms    = 97
	DefaultRoomsPerFloor = 10
)

// Room is a single bookable room.
//
// Invariant: (Floor, Number) never changes after the layout is built.
type Room struct {
	Floor    int
	Number   int
	Occupied bool
	// BookedBy is the requester holding the room; empty when unbooked.
	BookedBy string
}

// RoomRef identifies a room by floor index and 1-based room number.
type RoomRef struct {
	Floor  int `json:"floor"`
	Number int `json:"rno"`
}

// String returns the ref in "floor/number" form.
func (r RoomRef) String() string {
	return fmt.Sprintf("%d/%d", r.Floor, r.Number)
}

// Layout is the full occupancy snapshot of the building.
//
// Invariant: Floors[f][i].Floor == f and Floors[f][i].Number == i+1.
type Layout struct {
	Floors [][]Room
}

// NewLayout builds an unoccupied layout of totalRooms rooms laid out
// roomsPerFloor to a floor, the last floor taking the remainder.
//
// Precondition: totalRooms >= 1; roomsPerFloor >= 1.
// Postcondition: Returns a layout with ceil(totalRooms/roomsPerFloor) floors.
func NewLayout(totalRooms, roomsPerFloor int) (*Layout, error) {
	if totalRooms < 1 {
		return nil, fmt.Errorf("total rooms must be >= 1, got %d", totalRooms)
	}
	if roomsPerFloor < 1 {
		return nil, fmt.Errorf("rooms per floor must be >= 1, got %d", roomsPerFloor)
	}

	numFloors := (totalRooms + roomsPerFloor - 1) / roomsPerFloor
	floors := make([][]Room, 0, numFloors)
	remaining := totalRooms
	for f := 0; f < numFloors; f++ {
		n := min(roomsPerFloor, remaining)
		floor := make([]Room, n)
		for i := range floor {
			floor[i] = Room{Floor: f, Number: i + 1}
		}
		floors = append(floors, floor)
		remaining -= n
	}
	return &Layout{Floors: floors}, nil
}

// NewDefaultLayout returns the standard 97-room building.
func NewDefaultLayout() *Layout {
	l, _ := NewLayout(DefaultTotalRooms, DefaultRoomsPerFloor)
	return l
}

// FromOccupancy builds a layout from per-floor occupancy flags. It is mostly
// useful for fixtures and for stores that persist only occupancy.
func FromOccupancy(occupied [][]bool) *Layout {
	floors := make([][]Room, len(occupied))
	for f, row := range occupied {
		floors[f] = make([]Room, len(row))
		for i, occ := range row {
			floors[f][i] = Room{Floor: f, Number: i + 1, Occupied: occ}
		}
	}
	return &Layout{Floors: floors}
}

// Validate checks the layout structure invariant.
func (l *Layout) Validate() error {
	if len(l.Floors) == 0 {
		return fmt.Errorf("layout has no floors")
	}
	for f, floor := range l.Floors {
		if len(floor) == 0 {
			return fmt.Errorf("floor %d has no rooms", f)
		}
		for i, r := range floor {
			if r.Floor != f || r.Number != i+1 {
				return fmt.Errorf("floor %d position %d holds room %s", f, i, RoomRef{r.Floor, r.Number})
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	floors := make([][]Room, len(l.Floors))
	for f, floor := range l.Floors {
		floors[f] = append([]Room(nil), floor...)
	}
	return &Layout{Floors: floors}
}

// Room returns a pointer to the room at ref, or nil when ref is outside the layout.
func (l *Layout) Room(ref RoomRef) *Room {
	if ref.Floor < 0 || ref.Floor >= len(l.Floors) {
		return nil
	}
	floor := l.Floors[ref.Floor]
	if ref.Number < 1 || ref.Number > len(floor) {
		return nil
	}
	return &floor[ref.Number-1]
}

// SameShape reports whether other has the same floors and room counts.
func (l *Layout) SameShape(other *Layout) bool {
	if other == nil || len(l.Floors) != len(other.Floors) {
		return false
	}
	for f := range l.Floors {
		if len(l.Floors[f]) != len(other.Floors[f]) {
			return false
		}
	}
	return true
}

// TotalRooms returns the number of rooms in the building.
func (l *Layout) TotalRooms() int {
	total := 0
	for _, floor := range l.Floors {
		total += len(floor)
	}
	return total
}

// AvailableCount returns the number of unoccupied rooms.
func (l *Layout) AvailableCount() int {
	count := 0
	for _, floor := range l.Floors {
		count += availableOnFloor(floor)
	}
	return count
}

// OccupiedCount returns the number of occupied rooms.
func (l *Layout) OccupiedCount() int {
	return l.TotalRooms() - l.AvailableCount()
}

// OccupiedBy returns the number of rooms currently booked by requester.
func (l *Layout) OccupiedBy(requester string) int {
	count := 0
	for _, floor := range l.Floors {
		for _, r := range floor {
			if r.Occupied && r.BookedBy == requester {
				count++
			}
		}
	}
	return count
}

// AvailableRooms lists every unoccupied room in floor-major, room-minor order.
//
// Postcondition: The layout is not modified.
func (l *Layout) AvailableRooms() []RoomRef {
	var refs []RoomRef
	for f, floor := range l.Floors {
		for _, r := range floor {
			if !r.Occupied {
				refs = append(refs, RoomRef{Floor: f, Number: r.Number})
			}
		}
	}
	return refs
}

// FloorsWithCapacity returns, in ascending order, the indices of floors with
// at least n unoccupied rooms.
func (l *Layout) FloorsWithCapacity(n int) []int {
	var floors []int
	for f, floor := range l.Floors {
		if availableOnFloor(floor) >= n {
			floors = append(floors, f)
		}
	}
	return floors
}

// Reset marks every room unoccupied and clears its booker.
//
// Postcondition: AvailableCount() == TotalRooms().
func (l *Layout) Reset() {
	for f := range l.Floors {
		for i := range l.Floors[f] {
			l.Floors[f][i].Occupied = false
			l.Floors[f][i].BookedBy = ""
		}
	}
}

// Commit marks the selected rooms occupied by requester.
//
// Precondition: every room in sel exists and is unoccupied.
// Postcondition: Returns nil and all rooms are booked, or an error and the
// layout is unchanged.
func (l *Layout) Commit(sel Selection, requester string) error {
	seen := make(map[RoomRef]bool, len(sel.Rooms))
	for _, ref := range sel.Rooms {
		if seen[ref] {
			return fmt.Errorf("room %s selected twice", ref)
		}
		seen[ref] = true
		r := l.Room(ref)
		if r == nil {
			return fmt.Errorf("room %s does not exist", ref)
		}
		if r.Occupied {
			return fmt.Errorf("room %s is already occupied", ref)
		}
	}
	for _, ref := range sel.Rooms {
		r := l.Room(ref)
		r.Occupied = true
		r.BookedBy = requester
	}
	return nil
}

func availableOnFloor(floor []Room) int {
	n := 0
	for _, r := range floor {
		if !r.Occupied {
			n++
		}
	}
	return n
}
