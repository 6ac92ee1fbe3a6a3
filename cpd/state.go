// SPDX-License-Identifier: MIT

package cpd

import (
	"math/rand"

	"github.com/katalvlaran/alscpd/matrix"
	"github.com/katalvlaran/alscpd/tensor"
	"gonum.org/v1/gonum/mat"
)

// State is the mutable factorization: one r×N_k factor per axis with unit
// rows, the weight vector and the sigma cache sigma_k = f_k·f_kᵀ.
//
// Invariants (maintained by every exported mutator):
//   - every factor row has unit L2 norm after any update touching it;
//   - sigmas[k] is the Gram matrix of the current factors[k].
//
// A State is not safe for concurrent use.
type State struct {
	factors []*mat.Dense
	weights []float64
	sigmas  []*mat.Dense
}

// NewState draws random factors for the given shape: uniform [0,1) entries,
// rows normalized, zero weights.
//
// Errors:
//   - *InvalidRankError when rank < 1.
//   - ErrShapeMismatch for an empty shape or a non-positive extent.
func NewState(shape []int, rank int, rng *rand.Rand) (*State, error) {
	if rank < 1 {
		return nil, cpdErrorf(opNew, &InvalidRankError{Current: 0, Requested: rank})
	}
	if len(shape) == 0 {
		return nil, cpdErrorf(opNew, ErrShapeMismatch)
	}
	if rng == nil {
		rng = newRNG(0)
	}

	st := &State{
		factors: make([]*mat.Dense, len(shape)),
		weights: make([]float64, rank),
		sigmas:  make([]*mat.Dense, len(shape)),
	}
	var k, i int
	for k = range shape {
		if shape[k] <= 0 {
			return nil, cpdErrorf(opNew, ErrShapeMismatch)
		}
		data := make([]float64, rank*shape[k])
		for i = range data {
			data[i] = rng.Float64()
		}
		f := mat.NewDense(rank, shape[k], data)
		if _, err := matrix.NormalizeRows(f); err != nil {
			return nil, cpdErrorf(opNew, err)
		}
		st.factors[k] = f
	}
	if err := st.refreshAll(); err != nil {
		return nil, cpdErrorf(opNew, err)
	}

	return st, nil
}

// NewStateFrom builds a state from explicit weights and factors (copied).
// Factor rows are used as given; callers wanting the unit-row invariant must
// pass normalized rows.
//
// Errors:
//   - *InvalidRankError when len(weights) < 1.
//   - ErrShapeMismatch when a factor is nil or does not have len(weights) rows.
func NewStateFrom(weights []float64, factors []*mat.Dense) (*State, error) {
	r := len(weights)
	if r < 1 {
		return nil, cpdErrorf(opNew, &InvalidRankError{Current: 0, Requested: r})
	}
	if len(factors) == 0 {
		return nil, cpdErrorf(opNew, ErrShapeMismatch)
	}
	st := &State{
		factors: make([]*mat.Dense, len(factors)),
		weights: append([]float64(nil), weights...),
		sigmas:  make([]*mat.Dense, len(factors)),
	}
	for k, f := range factors {
		if f == nil {
			return nil, cpdErrorf(opNew, ErrShapeMismatch)
		}
		if fr, _ := f.Dims(); fr != r {
			return nil, cpdErrorf(opNew, ErrShapeMismatch)
		}
		st.factors[k] = mat.DenseCopyOf(f)
	}
	if err := st.refreshAll(); err != nil {
		return nil, cpdErrorf(opNew, err)
	}

	return st, nil
}

// Rank returns r.
func (s *State) Rank() int { return len(s.weights) }

// NDim returns the number of axes D.
func (s *State) NDim() int { return len(s.factors) }

// Shape returns the grid extents N_k.
func (s *State) Shape() []int {
	out := make([]int, len(s.factors))
	for k, f := range s.factors {
		_, out[k] = f.Dims()
	}
	return out
}

// Weights returns a copy of the weight vector.
func (s *State) Weights() []float64 { return append([]float64(nil), s.weights...) }

// Factor returns a copy of factor k.
func (s *State) Factor(k int) *mat.Dense { return mat.DenseCopyOf(s.factors[k]) }

// Factors returns copies of all factors.
func (s *State) Factors() []*mat.Dense { return copyAll(s.factors) }

// Sigma returns a copy of sigma k.
func (s *State) Sigma(k int) *mat.Dense { return mat.DenseCopyOf(s.sigmas[k]) }

// Sigmas returns copies of all sigmas.
func (s *State) Sigmas() []*mat.Dense { return copyAll(s.sigmas) }

// RefreshSigma recomputes sigma_k = f_k·f_kᵀ. O(r²·N_k).
func (s *State) RefreshSigma(k int) error {
	if k < 0 || k >= len(s.factors) {
		return cpdErrorf(opRefresh, ErrAxis)
	}
	g, err := matrix.Gram(s.factors[k])
	if err != nil {
		return cpdErrorf(opRefresh, err)
	}
	s.sigmas[k] = g

	return nil
}

func (s *State) refreshAll() error {
	for k := range s.factors {
		if err := s.RefreshSigma(k); err != nil {
			return err
		}
	}
	return nil
}

// Reconstruct evaluates the expansion on the full grid.
func (s *State) Reconstruct() (*tensor.Dense, error) {
	return tensor.Reconstruct(s.weights, s.factors)
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		factors: copyAll(s.factors),
		weights: append([]float64(nil), s.weights...),
		sigmas:  copyAll(s.sigmas),
	}
}

// commitAxis installs a new factor, its sigma and the weights in one step.
func (s *State) commitAxis(k int, f, sigma *mat.Dense, weights []float64) {
	s.factors[k] = f
	s.sigmas[k] = sigma
	s.weights = weights
}

// fits reports whether the state matches the extents of v.
func (s *State) fits(v *tensor.Dense) bool {
	if v == nil || v.NDim() != len(s.factors) {
		return false
	}
	for k, f := range s.factors {
		if _, c := f.Dims(); c != v.Dim(k) {
			return false
		}
	}
	return true
}

func copyAll(ms []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(ms))
	for i, m := range ms {
		out[i] = mat.DenseCopyOf(m)
	}
	return out
}
