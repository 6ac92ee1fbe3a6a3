// SPDX-License-Identifier: MIT

package sampling

import (
	"fmt"

	"github.com/katalvlaran/alscpd/tensor"
)

// Potential evaluates a scalar field on the product of coords: coords[k] is
// the list of values of axis k (the full grid for a free axis, one value for a
// pinned one). The result has Π len(coords[k]) entries in row-major order.
// coords is a fresh copy on every call and may be modified by the potential.
type Potential func(coords [][]float64) ([]float64, error)

// ArrayPotential adapts a loaded array into a Potential by exact coordinate
// lookup on grid. Coordinates not present on the grid are an error.
//
// Errors:
//   - ErrGrid when grid does not match the shape of v.
func ArrayPotential(v *tensor.Dense, grid Grid) (Potential, error) {
	if v == nil {
		return nil, samplingErrorf(opArrayPot, ErrGrid)
	}
	if err := grid.validate(); err != nil {
		return nil, samplingErrorf(opArrayPot, err)
	}
	if v.NDim() != grid.NDim() {
		return nil, samplingErrorf(opArrayPot, fmt.Errorf("%w: %d axes, array has %d", ErrGrid, grid.NDim(), v.NDim()))
	}
	lookup := make([]map[float64]int, len(grid))
	for k, axis := range grid {
		if len(axis) != v.Dim(k) {
			return nil, samplingErrorf(opArrayPot,
				fmt.Errorf("%w: axis %d has %d points, array has %d", ErrGrid, k, len(axis), v.Dim(k)))
		}
		lookup[k] = make(map[float64]int, len(axis))
		for i, x := range axis {
			lookup[k][x] = i
		}
	}

	return func(coords [][]float64) ([]float64, error) {
		if len(coords) != len(lookup) {
			return nil, fmt.Errorf("%w: %d coordinate axes, want %d", ErrIncompatiblePotential, len(coords), len(lookup))
		}
		pos := make([][]int, len(coords))
		size := 1
		for k, xs := range coords {
			pos[k] = make([]int, len(xs))
			for n, x := range xs {
				i, ok := lookup[k][x]
				if !ok {
					return nil, fmt.Errorf("%w: coordinate %g not on axis %d", ErrIncompatiblePotential, x, k)
				}
				pos[k][n] = i
			}
			size *= len(xs)
		}

		out := make([]float64, size)
		cur := make([]int, len(coords))
		idx := make([]int, len(coords))
		for n := range out {
			for k := range cur {
				idx[k] = pos[k][cur[k]]
			}
			out[n] = v.At(idx...)
			for k := len(cur) - 1; k >= 0; k-- {
				cur[k]++
				if cur[k] < len(pos[k]) {
					break
				}
				cur[k] = 0
			}
		}
		return out, nil
	}, nil
}
