package hotel

import "sort"

// Bounds on the number of rooms a single request may book.
const (
	MinRooms = 1
	MaxRooms = 5
)

// verticalCostPerFloor weights each floor the elevator travels.
const verticalCostPerFloor = 2

// Strategy names the search that produced a Selection.
type Strategy string

const (
	StrategySameFloor  Strategy = "same-floor"
	StrategyCrossFloor Strategy = "cross-floor"
)

// Request asks for NumOfRooms rooms on behalf of Requester.
type Request struct {
	NumOfRooms int
	Requester  string
}

// Selection is the set of rooms chosen for a request.
//
// Invariant: len(Rooms) equals the requested count; no room repeats.
type Selection struct {
	Strategy Strategy
	Rooms    []RoomRef
	Cost     int
	// Truncated is set when the cross-floor search hit its combination cap.
	Truncated bool
}

// FloorChoice is the outcome of the same-floor search.
type FloorChoice struct {
	Floor   int
	Cost    int
	Numbers []int
}

// FindBestFloor picks the floor and window of n free rooms with the smallest
// spread between the highest and lowest room number. Floors are scanned in
// ascending order and windows left to right; on equal cost the first one
// scanned wins.
//
// Precondition: n >= 1.
// Postcondition: ok is false when no floor has n free rooms; otherwise
// len(choice.Numbers) == n and the numbers are ascending.
func FindBestFloor(l *Layout, n int) (choice FloorChoice, ok bool) {
	bestCost := -1
	for f, floor := range l.Floors {
		free := make([]int, 0, len(floor))
		for _, r := range floor {
			if !r.Occupied {
				free = append(free, r.Number)
			}
		}
		if len(free) < n {
			continue
		}
		sort.Ints(free)

		for i := 0; i+n <= len(free); i++ {
			cost := free[i+n-1] - free[i]
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				choice = FloorChoice{
					Floor:   f,
					Cost:    cost,
					Numbers: append([]int(nil), free[i:i+n]...),
				}
			}
		}
	}
	return choice, bestCost >= 0
}

// CrossFloorChoice is the outcome of the cross-floor search.
type CrossFloorChoice struct {
	Rooms     []RoomRef
	Cost      int
	Evaluated int
	Truncated bool
}

// SelectAcrossFloors exhaustively searches every n-room combination of free
// rooms for the cheapest valid one. A combination is valid when the floors it
// touches are consecutive and the floor contributing most of its rooms is the
// dominant floor, the floor with the most free rooms overall. Cost is the sum
// of each floor's room-number spread plus two per floor of vertical span.
//
// The walk is O(C(free, n)). When maxCombinations > 0 the walk stops after
// that many combinations and returns the best valid one seen so far.
//
// Postcondition: ok is false when fewer than n rooms are free or no
// combination seen was valid.
func SelectAcrossFloors(l *Layout, n, maxCombinations int) (choice CrossFloorChoice, ok bool) {
	candidates := l.AvailableRooms()
	if n < 1 || len(candidates) < n {
		return CrossFloorChoice{}, false
	}
	dominant := dominantFloor(l)

	bestCost := -1
	var best []int
	combos := newCombinations(len(candidates), n)
	for combos.Next() {
		if maxCombinations > 0 && choice.Evaluated >= maxCombinations {
			choice.Truncated = true
			break
		}
		choice.Evaluated++

		idx := combos.Indices()
		cost, valid := crossFloorCost(candidates, idx, dominant)
		if !valid {
			continue
		}
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			best = append(best[:0], idx...)
		}
	}
	if bestCost < 0 {
		return choice, false
	}

	choice.Cost = bestCost
	choice.Rooms = make([]RoomRef, n)
	for i, j := range best {
		choice.Rooms[i] = candidates[j]
	}
	return choice, true
}

// dominantFloor returns the floor with the most free rooms, lowest index on tie.
func dominantFloor(l *Layout) int {
	dominant, most := -1, 0
	for f, floor := range l.Floors {
		if c := availableOnFloor(floor); c > most {
			dominant, most = f, c
		}
	}
	return dominant
}

// crossFloorCost scores the combination idx over candidates. Candidates are
// floor-major and room-minor and idx is ascending, so each floor's rooms form
// a run whose first and last entries are its minimum and maximum.
func crossFloorCost(candidates []RoomRef, idx []int, dominant int) (cost int, valid bool) {
	first := candidates[idx[0]]
	runFloor, runStart, runCount := first.Floor, first.Number, 0
	prevNumber := first.Number
	heaviest, heaviestCount := first.Floor, 0

	closeRun := func() {
		cost += prevNumber - runStart
		if runCount > heaviestCount {
			heaviest, heaviestCount = runFloor, runCount
		}
	}

	for _, j := range idx {
		r := candidates[j]
		if r.Floor != runFloor {
			if r.Floor != runFloor+1 {
				return 0, false
			}
			closeRun()
			runFloor, runStart, runCount = r.Floor, r.Number, 0
		}
		runCount++
		prevNumber = r.Number
	}
	closeRun()

	if heaviest != dominant {
		return 0, false
	}
	last := candidates[idx[len(idx)-1]]
	cost += (last.Floor - first.Floor) * verticalCostPerFloor
	return cost, true
}

// Allocator chooses rooms for booking requests. The zero value searches
// cross-floor combinations without a cap.
type Allocator struct {
	MaxCombinations int
}

// Allocate selects rooms for req from the snapshot l without modifying it.
// A single floor is always preferred when any floor can hold the whole
// request; otherwise the cross-floor search runs.
//
// Postcondition: Returns a Selection of exactly req.NumOfRooms distinct free
// rooms, or an *AllocationError wrapping ErrInvalidRequest,
// ErrInsufficientRooms or ErrUnbookable.
func (a Allocator) Allocate(l *Layout, req Request) (Selection, error) {
	n := req.NumOfRooms
	available := l.AvailableCount()
	if n < MinRooms || n > MaxRooms {
		return Selection{}, &AllocationError{Kind: ErrInvalidRequest, Requested: n, Available: available}
	}
	if available < n {
		return Selection{}, &AllocationError{Kind: ErrInsufficientRooms, Requested: n, Available: available}
	}

	if fc, ok := FindBestFloor(l, n); ok {
		rooms := make([]RoomRef, n)
		for i, num := range fc.Numbers {
			rooms[i] = RoomRef{Floor: fc.Floor, Number: num}
		}
		return Selection{Strategy: StrategySameFloor, Rooms: rooms, Cost: fc.Cost}, nil
	}

	if cc, ok := SelectAcrossFloors(l, n, a.MaxCombinations); ok {
		return Selection{Strategy: StrategyCrossFloor, Rooms: cc.Rooms, Cost: cc.Cost, Truncated: cc.Truncated}, nil
	}
	return Selection{}, &AllocationError{Kind: ErrUnbookable, Requested: n, Available: available}
}
