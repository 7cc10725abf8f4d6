package hotel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hotel/internal/hotel"
)

// occupiedExcept builds a layout of the given floor sizes where only the
// listed rooms are free.
func occupiedExcept(sizes []int, free map[int][]int) *hotel.Layout {
	occ := make([][]bool, len(sizes))
	for f, n := range sizes {
		occ[f] = make([]bool, n)
		for i := range occ[f] {
			occ[f][i] = true
		}
		for _, num := range free[f] {
			occ[f][num-1] = false
		}
	}
	return hotel.FromOccupancy(occ)
}

func refs(pairs ...[2]int) []hotel.RoomRef {
	out := make([]hotel.RoomRef, len(pairs))
	for i, p := range pairs {
		out[i] = hotel.RoomRef{Floor: p[0], Number: p[1]}
	}
	return out
}

func TestFindBestFloor_FirstFreeRoom(t *testing.T) {
	l := hotel.FromOccupancy([][]bool{
		{true, true, true, false, false},
		{false, false, false, false, false},
		{false, false, false, false, false},
	})

	choice, ok := hotel.FindBestFloor(l, 1)
	require.True(t, ok)
	assert.Equal(t, 0, choice.Floor)
	assert.Equal(t, 0, choice.Cost)
	assert.Equal(t, []int{4}, choice.Numbers)
}

func TestFindBestFloor_TieKeepsLowerFloor(t *testing.T) {
	l := occupiedExcept([]int{5, 5}, map[int][]int{
		0: {1, 2},
		1: {3, 4},
	})

	choice, ok := hotel.FindBestFloor(l, 2)
	require.True(t, ok)
	assert.Equal(t, 0, choice.Floor)
	assert.Equal(t, []int{1, 2}, choice.Numbers)
}

func TestFindBestFloor_TieKeepsEarliestWindow(t *testing.T) {
	l := occupiedExcept([]int{5}, map[int][]int{0: {1, 2, 4, 5}})

	choice, ok := hotel.FindBestFloor(l, 2)
	require.True(t, ok)
	assert.Equal(t, 1, choice.Cost)
	assert.Equal(t, []int{1, 2}, choice.Numbers)
}

func TestFindBestFloor_WindowSpansOccupiedGap(t *testing.T) {
	l := occupiedExcept([]int{6, 6}, map[int][]int{
		0: {1, 4, 6},
		1: {1, 2},
	})

	choice, ok := hotel.FindBestFloor(l, 3)
	require.True(t, ok)
	assert.Equal(t, 0, choice.Floor)
	assert.Equal(t, 5, choice.Cost)
	assert.Equal(t, []int{1, 4, 6}, choice.Numbers)
}

func TestFindBestFloor_NoFloorQualifies(t *testing.T) {
	l := occupiedExcept([]int{3, 3}, map[int][]int{0: {1}, 1: {2}})
	_, ok := hotel.FindBestFloor(l, 2)
	assert.False(t, ok)
}

// crossFloorFixture has floor 0 full, floor 1 with rooms 1-2 free and floor 2
// with rooms 1-4 free, so no single floor can take five rooms.
func crossFloorFixture() *hotel.Layout {
	return occupiedExcept([]int{5, 5, 5}, map[int][]int{
		1: {1, 2},
		2: {1, 2, 3, 4},
	})
}

func TestSelectAcrossFloors_FirstCheapestCombination(t *testing.T) {
	choice, ok := hotel.SelectAcrossFloors(crossFloorFixture(), 5, 0)
	require.True(t, ok)

	// floor 1 spread 1 + floor 2 spread 2 + one floor of vertical travel.
	assert.Equal(t, 5, choice.Cost)
	assert.Equal(t, refs([2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}), choice.Rooms)
	assert.Equal(t, 6, choice.Evaluated)
	assert.False(t, choice.Truncated)
}

func TestSelectAcrossFloors_RejectsGapBetweenFloors(t *testing.T) {
	l := occupiedExcept([]int{2, 2, 2}, map[int][]int{
		0: {1, 2},
		2: {1},
	})
	_, ok := hotel.SelectAcrossFloors(l, 3, 0)
	assert.False(t, ok)
}

func TestSelectAcrossFloors_HeaviestFloorMustBeDominant(t *testing.T) {
	// Floor 1 has the most free rooms, so floor 0 may contribute at most as
	// many rooms as floor 1 and ties resolve to the lower floor.
	l := occupiedExcept([]int{4, 4}, map[int][]int{
		0: {1, 2},
		1: {1, 2, 3},
	})

	choice, ok := hotel.SelectAcrossFloors(l, 4, 0)
	require.True(t, ok)
	perFloor := map[int]int{}
	for _, r := range choice.Rooms {
		perFloor[r.Floor]++
	}
	assert.Equal(t, 1, perFloor[0])
	assert.Equal(t, 3, perFloor[1])
	assert.Equal(t, 0+2+2, choice.Cost)
}

// TestSelectAcrossFloors_SixRoomsOnAdjacentFloors covers a request larger than
// any floor: floor 2 is entirely free and one more room is free on a
// neighbouring floor, so the only candidate set is all six free rooms.
func TestSelectAcrossFloors_SixRoomsOnAdjacentFloors(t *testing.T) {
	cases := []struct {
		name  string
		free  map[int][]int
		rooms []hotel.RoomRef
	}{
		{
			name:  "floor above",
			free:  map[int][]int{2: {1, 2, 3, 4, 5}, 3: {3}},
			rooms: refs([2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{2, 5}, [2]int{3, 3}),
		},
		{
			name:  "floor below",
			free:  map[int][]int{1: {5}, 2: {1, 2, 3, 4, 5}},
			rooms: refs([2]int{1, 5}, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{2, 5}),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := occupiedExcept([]int{5, 5, 5, 5}, tc.free)
			_, sameFloor := hotel.FindBestFloor(l, 6)
			require.False(t, sameFloor)

			choice, ok := hotel.SelectAcrossFloors(l, 6, 0)
			require.True(t, ok)
			assert.Equal(t, tc.rooms, choice.Rooms)
			// floor 2 spread 5-1 + single-room floor spread 0 + one floor of vertical travel.
			assert.Equal(t, 4+0+2*1, choice.Cost)
			assert.Equal(t, 1, choice.Evaluated)
			assert.False(t, choice.Truncated)
		})
	}

	l := occupiedExcept([]int{5, 5, 5, 5}, map[int][]int{0: {2}, 2: {1, 2, 3, 4, 5}})
	_, ok := hotel.SelectAcrossFloors(l, 6, 0)
	assert.False(t, ok, "floors 0 and 2 are not adjacent")
}

func TestSelectAcrossFloors_InsufficientCandidates(t *testing.T) {
	l := occupiedExcept([]int{2, 2}, map[int][]int{0: {1}})
	_, ok := hotel.SelectAcrossFloors(l, 2, 0)
	assert.False(t, ok)
}

func TestSelectAcrossFloors_CapReturnsBestSoFar(t *testing.T) {
	choice, ok := hotel.SelectAcrossFloors(crossFloorFixture(), 5, 1)
	require.True(t, ok)
	assert.True(t, choice.Truncated)
	assert.Equal(t, 1, choice.Evaluated)
	assert.Equal(t, 5, choice.Cost)
}

func TestAllocate_InvalidCount(t *testing.T) {
	l := hotel.NewDefaultLayout()
	for _, n := range []int{-1, 0, 6, 100} {
		_, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: n, Requester: "a"})
		require.Error(t, err, "n=%d", n)
		assert.ErrorIs(t, err, hotel.ErrInvalidRequest)
	}
}

func TestAllocate_InsufficientRooms(t *testing.T) {
	l := occupiedExcept([]int{3, 3}, map[int][]int{0: {1}, 1: {3}})

	_, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, hotel.ErrInsufficientRooms)

	var allocErr *hotel.AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.Equal(t, 3, allocErr.Requested)
	assert.Equal(t, 2, allocErr.Available)
}

func TestAllocate_Unbookable(t *testing.T) {
	l := occupiedExcept([]int{2, 2, 2}, map[int][]int{
		0: {1, 2},
		2: {1},
	})
	_, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, hotel.ErrUnbookable)
	assert.NotErrorIs(t, err, hotel.ErrInsufficientRooms)
}

func TestAllocate_PrefersSameFloorOverCheaperCrossFloor(t *testing.T) {
	// Floor 0 holds two rooms five apart; rooms 1 on floors 1 and 2 would
	// cost only 2 across floors, but a single floor always wins.
	l := occupiedExcept([]int{6, 6, 6}, map[int][]int{
		0: {1, 6},
		1: {1},
		2: {1},
	})

	sel, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: 2})
	require.NoError(t, err)
	assert.Equal(t, hotel.StrategySameFloor, sel.Strategy)
	assert.Equal(t, refs([2]int{0, 1}, [2]int{0, 6}), sel.Rooms)
	assert.Equal(t, 5, sel.Cost)
}

func TestAllocate_FallsBackToCrossFloor(t *testing.T) {
	sel, err := hotel.Allocator{}.Allocate(crossFloorFixture(), hotel.Request{NumOfRooms: 5})
	require.NoError(t, err)
	assert.Equal(t, hotel.StrategyCrossFloor, sel.Strategy)
	assert.Equal(t, 5, sel.Cost)
	assert.Len(t, sel.Rooms, 5)
}

func TestAllocate_CapWithNoValidPrefixIsUnbookable(t *testing.T) {
	// Floor 2 is dominant; the first three combinations lean on floor 0 or
	// skip floor 1, and only the last one is valid.
	l := occupiedExcept([]int{2, 2, 2}, map[int][]int{
		0: {1},
		1: {1},
		2: {1, 2},
	})

	_, err := hotel.Allocator{MaxCombinations: 1}.Allocate(l, hotel.Request{NumOfRooms: 3})
	assert.ErrorIs(t, err, hotel.ErrUnbookable)

	sel, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: 3})
	require.NoError(t, err)
	assert.Equal(t, refs([2]int{1, 1}, [2]int{2, 1}, [2]int{2, 2}), sel.Rooms)
	assert.Equal(t, 3, sel.Cost)
}

func TestAllocate_DoesNotModifySnapshot(t *testing.T) {
	l := crossFloorFixture()
	before := l.Clone()
	_, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: 5, Requester: "x"})
	require.NoError(t, err)
	assert.Equal(t, before, l)
}

// genLayout draws a small layout with arbitrary occupancy.
func genLayout(rt *rapid.T) *hotel.Layout {
	floors := rapid.IntRange(1, 5).Draw(rt, "floors")
	occ := make([][]bool, floors)
	for f := range occ {
		size := rapid.IntRange(1, 7).Draw(rt, "size")
		occ[f] = rapid.SliceOfN(rapid.Bool(), size, size).Draw(rt, "occupied")
	}
	return hotel.FromOccupancy(occ)
}

// referenceCrossFloorCost recursively evaluates every combination and
// returns the minimum valid cost, or -1.
func referenceCrossFloorCost(l *hotel.Layout, n int) int {
	cands := l.AvailableRooms()
	freePerFloor := map[int]int{}
	for _, c := range cands {
		freePerFloor[c.Floor]++
	}
	dominant, most := -1, 0
	for f := range l.Floors {
		if freePerFloor[f] > most {
			dominant, most = f, freePerFloor[f]
		}
	}

	best := -1
	var pick []hotel.RoomRef
	var walk func(start int)
	walk = func(start int) {
		if len(pick) == n {
			minF, maxF := pick[0].Floor, pick[0].Floor
			lo, hi, cnt := map[int]int{}, map[int]int{}, map[int]int{}
			for _, r := range pick {
				minF, maxF = min(minF, r.Floor), max(maxF, r.Floor)
				if cnt[r.Floor] == 0 {
					lo[r.Floor], hi[r.Floor] = r.Number, r.Number
				}
				lo[r.Floor], hi[r.Floor] = min(lo[r.Floor], r.Number), max(hi[r.Floor], r.Number)
				cnt[r.Floor]++
			}
			heaviest, heavy := -1, 0
			for f := minF; f <= maxF; f++ {
				if cnt[f] == 0 {
					return
				}
				if cnt[f] > heavy {
					heaviest, heavy = f, cnt[f]
				}
			}
			if heaviest != dominant {
				return
			}
			cost := (maxF - minF) * 2
			for f := range cnt {
				cost += hi[f] - lo[f]
			}
			if best < 0 || cost < best {
				best = cost
			}
			return
		}
		for i := start; i < len(cands); i++ {
			pick = append(pick, cands[i])
			walk(i + 1)
			pick = pick[:len(pick)-1]
		}
	}
	walk(0)
	return best
}

// TestAllocate_Property verifies that every successful allocation returns
// exactly n distinct free rooms, prefers a single floor whenever one has
// capacity, and that cross-floor selections are contiguous and optimal.
func TestAllocate_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := genLayout(rt)
		n := rapid.IntRange(hotel.MinRooms, hotel.MaxRooms).Draw(rt, "n")

		sel, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: n, Requester: "p"})
		if err != nil {
			switch {
			case errors.Is(err, hotel.ErrInsufficientRooms):
				assert.Less(rt, l.AvailableCount(), n)
			case errors.Is(err, hotel.ErrUnbookable):
				assert.Empty(rt, l.FloorsWithCapacity(n))
				assert.Equal(rt, -1, referenceCrossFloorCost(l, n))
			default:
				rt.Fatalf("unexpected error: %v", err)
			}
			return
		}

		require.Len(rt, sel.Rooms, n)
		seen := map[hotel.RoomRef]bool{}
		for _, ref := range sel.Rooms {
			assert.False(rt, seen[ref], "room %s selected twice", ref)
			seen[ref] = true
			r := l.Room(ref)
			require.NotNil(rt, r)
			assert.False(rt, r.Occupied, "room %s already occupied", ref)
		}

		if len(l.FloorsWithCapacity(n)) > 0 {
			assert.Equal(rt, hotel.StrategySameFloor, sel.Strategy)
			for _, ref := range sel.Rooms {
				assert.Equal(rt, sel.Rooms[0].Floor, ref.Floor)
			}
			return
		}

		assert.Equal(rt, hotel.StrategyCrossFloor, sel.Strategy)
		floors := map[int]bool{}
		minF, maxF := sel.Rooms[0].Floor, sel.Rooms[0].Floor
		for _, ref := range sel.Rooms {
			floors[ref.Floor] = true
			minF, maxF = min(minF, ref.Floor), max(maxF, ref.Floor)
		}
		assert.Len(rt, floors, maxF-minF+1, "floors touched must be contiguous")
		assert.Equal(rt, referenceCrossFloorCost(l, n), sel.Cost)
	})
}

// TestCommit_Property verifies Commit books exactly the selected rooms.
func TestCommit_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := genLayout(rt)
		n := rapid.IntRange(hotel.MinRooms, hotel.MaxRooms).Draw(rt, "n")
		sel, err := hotel.Allocator{}.Allocate(l, hotel.Request{NumOfRooms: n, Requester: "guest"})
		if err != nil {
			return
		}
		before := l.AvailableCount()
		require.NoError(rt, l.Commit(sel, "guest"))
		assert.Equal(rt, before-n, l.AvailableCount())
		for _, ref := range sel.Rooms {
			assert.Equal(rt, "guest", l.Room(ref).BookedBy)
		}
	})
}
