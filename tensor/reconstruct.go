// SPDX-License-Identifier: MIT

package tensor

import (
	"gonum.org/v1/gonum/mat"
)

// Reconstruct evaluates Σ_m weights[m]·f_1[m,:]⊗…⊗f_D[m,:] on the full grid.
// The shape is taken from the factor column counts. Only the first
// len(weights) rows of each factor are used.
//
// Errors:
//   - ErrFactorMismatch when factors is empty, a factor is nil, or a factor has
//     fewer rows than len(weights).
//
// Complexity: O(r·ΠN_k) time, O(ΠN_k) extra space.
func Reconstruct(weights []float64, factors []*mat.Dense) (*Dense, error) {
	if len(factors) == 0 {
		return nil, tensorErrorf(opReconstruct, ErrFactorMismatch)
	}
	shape := make([]int, len(factors))
	for k, f := range factors {
		if f == nil {
			return nil, tensorErrorf(opReconstruct, ErrFactorMismatch)
		}
		fr, fc := f.Dims()
		if fr < len(weights) {
			return nil, tensorErrorf(opReconstruct, ErrFactorMismatch)
		}
		shape[k] = fc
	}
	out, err := New(shape, nil)
	if err != nil {
		return nil, tensorErrorf(opReconstruct, err)
	}

	buf := make([]float64, out.Len())
	next := make([]float64, out.Len())
	var m, p, q, size int
	var row []float64
	for m = range weights {
		buf[0] = weights[m]
		size = 1
		for _, f := range factors {
			row = f.RawRowView(m)
			for p = 0; p < size; p++ {
				for q = range row {
					next[p*len(row)+q] = buf[p] * row[q]
				}
			}
			size *= len(row)
			buf, next = next, buf
		}
		for p = 0; p < size; p++ {
			out.data[p] += buf[p]
		}
	}

	return out, nil
}
