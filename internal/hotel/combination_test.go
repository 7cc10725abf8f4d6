package hotel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCombinations_LexicographicOrder(t *testing.T) {
	var got [][]int
	c := newCombinations(4, 2)
	for c.Next() {
		got = append(got, append([]int(nil), c.Indices()...))
	}
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinations_Empty(t *testing.T) {
	assert.False(t, newCombinations(2, 3).Next())
	assert.False(t, newCombinations(3, 0).Next())
}

func binomial(n, k int) int {
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}

// TestCombinations_Count verifies a full walk yields C(n, k) strictly
// ascending subsets.
func TestCombinations_Count(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 14).Draw(rt, "n")
		k := rapid.IntRange(1, n).Draw(rt, "k")

		count := 0
		c := newCombinations(n, k)
		for c.Next() {
			idx := c.Indices()
			for i := 1; i < len(idx); i++ {
				assert.Less(rt, idx[i-1], idx[i])
			}
			assert.Less(rt, idx[len(idx)-1], n)
			count++
		}
		assert.Equal(rt, binomial(n, k), count)
		assert.False(rt, c.Next(), "exhausted walk must stay exhausted")
	})
}
