package hotel

// combinations yields every k-subset of [0, n) as ascending index slices in
// lexicographic order. The yielded slice is reused between calls; callers
// must copy it to retain it.
//
// Memory is O(k); a full walk visits C(n, k) subsets.
type combinations struct {
	n, k    int
	idx     []int
	started bool
	done    bool
}

func newCombinations(n, k int) *combinations {
	c := &combinations{n: n, k: k, idx: make([]int, k)}
	for i := range c.idx {
		c.idx[i] = i
	}
	if k > n || k < 1 {
		c.done = true
	}
	return c
}

// Next advances to the following subset and reports whether one exists.
func (c *combinations) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		return true
	}
	i := c.k - 1
	for i >= 0 && c.idx[i] == c.n-c.k+i {
		i--
	}
	if i < 0 {
		c.done = true
		return false
	}
	c.idx[i]++
	for j := i + 1; j < c.k; j++ {
		c.idx[j] = c.idx[j-1] + 1
	}
	return true
}

// Indices returns the current subset.
func (c *combinations) Indices() []int {
	return c.idx
}
