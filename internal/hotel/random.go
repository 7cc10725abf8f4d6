package hotel

import "github.com/cory-johannsen/hotel/internal/random"

// RandomBooker is the BookedBy value written by RandomFill.
const RandomBooker = "random"

// Random fill occupies between 30% and 50% of the building.
const (
	randomFillMin    = 0.3
	randomFillSpread = 0.2
)

// RandomFill resets the layout and then books floor(total*U(0.3,0.5)) rooms
// picked uniformly at random, retrying picks that land on a booked room.
//
// Precondition: src must be non-nil.
// Postcondition: OccupiedCount() equals the returned target and every
// occupied room is booked by RandomBooker.
func (l *Layout) RandomFill(src random.Source) int {
	l.Reset()

	total := l.TotalRooms()
	target := int(float64(total) * (randomFillMin + src.Float64()*randomFillSpread))

	booked := 0
	for booked < target {
		f := src.Intn(len(l.Floors))
		r := &l.Floors[f][src.Intn(len(l.Floors[f]))]
		if r.Occupied {
			continue
		}
		r.Occupied = true
		r.BookedBy = RandomBooker
		booked++
	}
	return target
}
