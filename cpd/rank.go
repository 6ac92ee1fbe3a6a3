// SPDX-License-Identifier: MIT

package cpd

import (
	"math/rand"

	"github.com/katalvlaran/alscpd/matrix"
	"gonum.org/v1/gonum/mat"
)

// ChangeRank grows the expansion to newRank.
//
// Implementation:
//   - Stage 1: Reject newRank < rank with *InvalidRankError; newRank == rank is a no-op.
//   - Stage 2: Per axis allocate (newRank × N_k), copy the old block verbatim and
//     fill the new rows with uniform [0,1) values from rng, normalizing them.
//   - Stage 3: Zero-extend the weights and recompute every sigma, then commit.
//
// Behavior highlights:
//   - Existing rows are kept bit-identical (they are unit already), so the
//     first r components reconstruct exactly as before the call.
//   - On any error the state is unchanged.
func (s *State) ChangeRank(newRank int, rng *rand.Rand) error {
	old := s.Rank()
	if newRank < old {
		return cpdErrorf(opChangeRank, &InvalidRankError{Current: old, Requested: newRank})
	}
	if newRank == old {
		return nil
	}
	if rng == nil {
		rng = newRNG(0)
	}

	factors := make([]*mat.Dense, len(s.factors))
	sigmas := make([]*mat.Dense, len(s.factors))
	var m, n int
	for k, f := range s.factors {
		_, cols := f.Dims()
		g := mat.NewDense(newRank, cols, nil)
		for m = 0; m < old; m++ {
			copy(g.RawRowView(m), f.RawRowView(m))
		}
		for m = old; m < newRank; m++ {
			row := g.RawRowView(m)
			for n = range row {
				row[n] = rng.Float64()
			}
		}
		if err := matrix.NormalizeRowRange(g, old, newRank); err != nil {
			return cpdErrorf(opChangeRank, err)
		}
		sig, err := matrix.Gram(g)
		if err != nil {
			return cpdErrorf(opChangeRank, err)
		}
		factors[k], sigmas[k] = g, sig
	}

	weights := make([]float64, newRank)
	copy(weights, s.weights)

	s.factors, s.sigmas, s.weights = factors, sigmas, weights

	return nil
}
