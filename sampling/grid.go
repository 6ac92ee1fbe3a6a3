// SPDX-License-Identifier: MIT

package sampling

// Grid holds the 1D coordinate points of every axis of a product grid.
type Grid [][]float64

// Shape returns the number of points per axis.
func (g Grid) Shape() []int {
	out := make([]int, len(g))
	for k, axis := range g {
		out[k] = len(axis)
	}
	return out
}

// NDim returns the number of axes.
func (g Grid) NDim() int { return len(g) }

// validate checks that the grid has at least one axis and no empty axis.
func (g Grid) validate() error {
	if len(g) == 0 {
		return ErrGrid
	}
	for _, axis := range g {
		if len(axis) == 0 {
			return ErrGrid
		}
	}
	return nil
}

// Linspace returns n evenly spaced points from start to end inclusive.
// n == 1 yields [start]; n < 1 yields nil.
func Linspace(n int, start, end float64) []float64 {
	if n < 1 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

// Pairs lists the axis pairs (i, j), i < j, of d axes in lexicographic order.
func Pairs(d int) [][2]int {
	if d < 2 {
		return nil
	}
	out := make([][2]int, 0, d*(d-1)/2)
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}

// PairIndex returns the position of (i, j) in Pairs(d), or -1 unless 0 ≤ i < j < d.
func PairIndex(d, i, j int) int {
	if i < 0 || j >= d || i >= j {
		return -1
	}
	return i*(2*d-i-1)/2 + (j - i - 1)
}
