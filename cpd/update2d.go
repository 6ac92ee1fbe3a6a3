// SPDX-License-Identifier: MIT

package cpd

import (
	"github.com/katalvlaran/alscpd/matrix"
	"github.com/katalvlaran/alscpd/tensor"
	"gonum.org/v1/gonum/mat"
)

// pairConfig carries the per-run settings of a two-axis update.
type pairConfig struct {
	strategy      Strategy
	eps           float64
	subIterations int
	tolerance     float64 // truncation tolerance for the SVD strategies
	unitScale     float64
}

func defaultPairConfig(strategy Strategy, eps float64) pairConfig {
	return pairConfig{
		strategy:      strategy,
		eps:           eps,
		subIterations: DefaultSubIterations,
		tolerance:     DefaultTruncationTolerance,
		unitScale:     DefaultUnitScale,
	}
}

// pairWork is the working copy of everything a pair update may change.
type pairWork struct {
	weights []float64
	fi, fj  *mat.Dense
	si, sj  *mat.Dense // sigma_i, sigma_j of fi, fj
}

// Update2D jointly updates the axis pair (i, j), i < j, against the full array.
//
// Implementation:
//   - Stage 1: S_ij = HoleOverlap(σ, i, j); b_ij = contraction of v against every
//     factor except i and j, flattened to r × (N_i·N_j).
//   - Stage 2: x_ij = (S_ij + εI)⁻¹·b_ij.
//   - Stage 3: Rank-1 reduction: per component m the dominant singular triplet
//     of the N_i×N_j slice x_ij[m] gives weight[m], f_i[m,:] and f_j[m,:].
//   - Stage 4: Sub-iteration refinement (up to DefaultSubIterations rounds) with
//     the chosen strategy.
//   - Stage 5: Commit weights, f_i, f_j, sigma_i, sigma_j together.
//
// Errors:
//   - ErrAxis unless 0 ≤ i < j < D; ErrStrategy; ErrShapeMismatch.
//   - ErrNumericalInstability from any solve; st is unchanged.
//
// Complexity:
//   - Time O(r·ΠN + r²·N_i·N_j + r·N_i·N_j·min(N_i,N_j) + rounds·r²·N_i·N_j).
func Update2D(v *tensor.Dense, st *State, i, j int, strategy Strategy, eps float64) error {
	return updatePair(v, st, i, j, defaultPairConfig(strategy, eps))
}

func updatePair(v *tensor.Dense, st *State, i, j int, cfg pairConfig) error {
	if !st.fits(v) {
		return cpdErrorf(opUpdate2D, ErrShapeMismatch)
	}
	if err := checkPair(st, i, j, cfg); err != nil {
		return cpdErrorf(opUpdate2D, err)
	}

	sij, err := HoleOverlap(st.sigmas, i, j)
	if err != nil {
		return cpdErrorf(opUpdate2D, err)
	}
	b, err := tensor.ContractExcept(v, st.factors, i, j)
	if err != nil {
		return cpdErrorf(opUpdate2D, err)
	}
	x, err := matrix.SolveRegularized(sij, cfg.eps, b)
	if err != nil {
		return unstable(opUpdate2D, err)
	}

	work, _, err := reduceAndRefine(st, i, j, sij, x, cfg)
	if err != nil {
		return err
	}
	commitPair(st, i, j, work)

	return nil
}

func checkPair(st *State, i, j int, cfg pairConfig) error {
	if i < 0 || j >= st.NDim() || i >= j {
		return ErrAxis
	}
	if !cfg.strategy.valid() {
		return ErrStrategy
	}
	return nil
}

// reduceAndRefine turns the joint solution x (r × N_i·N_j) into rank-one
// factors for i and j and refines them. It returns the working copy and the
// refinement history; st is not modified.
func reduceAndRefine(st *State, i, j int, sij, x *mat.Dense, cfg pairConfig) (pairWork, []float64, error) {
	r := st.Rank()
	_, ni := st.factors[i].Dims()
	_, nj := st.factors[j].Dims()

	work := pairWork{
		weights: make([]float64, r),
		fi:      mat.NewDense(r, ni, nil),
		fj:      mat.NewDense(r, nj, nil),
	}
	for m := 0; m < r; m++ {
		slice := mat.NewDense(ni, nj, x.RawRowView(m))
		s, u, w, err := matrix.DominantTriplet(slice)
		if err != nil {
			return pairWork{}, nil, unstable(opUpdate2D, err)
		}
		work.weights[m] = s
		copy(work.fi.RawRowView(m), u)
		copy(work.fj.RawRowView(m), w)
	}

	var err error
	if work.si, err = matrix.Gram(work.fi); err != nil {
		return pairWork{}, nil, cpdErrorf(opUpdate2D, err)
	}
	if work.sj, err = matrix.Gram(work.fj); err != nil {
		return pairWork{}, nil, cpdErrorf(opUpdate2D, err)
	}

	hist, err := refine(&work, sij, x, ni, nj, cfg)
	if err != nil {
		return pairWork{}, nil, err
	}

	return work, hist, nil
}

func commitPair(st *State, i, j int, w pairWork) {
	st.factors[i], st.sigmas[i] = w.fi, w.si
	st.factors[j], st.sigmas[j] = w.fj, w.sj
	st.weights = w.weights
}
