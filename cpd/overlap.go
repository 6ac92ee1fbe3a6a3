// SPDX-License-Identifier: MIT

package cpd

import (
	"github.com/katalvlaran/alscpd/matrix"
	"gonum.org/v1/gonum/mat"
)

// HoleOverlap returns the Hadamard product of every sigma whose axis is not in
// excluded. Zero, one or two axes may be excluded; with nothing left to
// multiply the result is the all-ones r×r matrix.
//
// Invariant: HoleOverlap(σ) = HoleOverlap(σ, k) ⊙ σ_k for every k.
//
// Errors:
//   - ErrTooManyHoles for more than two excluded axes.
//   - ErrAxis for an out-of-range or repeated axis.
//   - ErrShapeMismatch when sigmas is empty or shapes differ.
//
// Complexity: O(D·r²).
func HoleOverlap(sigmas []*mat.Dense, excluded ...int) (*mat.Dense, error) {
	if len(sigmas) == 0 || sigmas[0] == nil {
		return nil, cpdErrorf(opHoleOverlap, ErrShapeMismatch)
	}
	if err := checkHoles(len(sigmas), excluded); err != nil {
		return nil, cpdErrorf(opHoleOverlap, err)
	}

	r, _ := sigmas[0].Dims()
	out := matrix.Ones(r)
	for k, s := range sigmas {
		if isExcluded(k, excluded) {
			continue
		}
		if err := matrix.HadamardInPlace(out, s); err != nil {
			return nil, cpdErrorf(opHoleOverlap, ErrShapeMismatch)
		}
	}

	return out, nil
}

// checkHoles validates up to two distinct excluded axes out of d.
func checkHoles(d int, excluded []int) error {
	if len(excluded) > 2 {
		return ErrTooManyHoles
	}
	for q, k := range excluded {
		if k < 0 || k >= d {
			return ErrAxis
		}
		if q == 1 && excluded[0] == k {
			return ErrAxis
		}
	}
	return nil
}

func isExcluded(k int, excluded []int) bool {
	for _, e := range excluded {
		if e == k {
			return true
		}
	}
	return false
}
