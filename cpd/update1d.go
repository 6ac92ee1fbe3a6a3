// SPDX-License-Identifier: MIT

package cpd

import (
	"github.com/katalvlaran/alscpd/matrix"
	"github.com/katalvlaran/alscpd/tensor"
	"gonum.org/v1/gonum/mat"
)

// axisSolution is a solved, normalized axis update ready to commit.
type axisSolution struct {
	weights []float64
	factor  *mat.Dense
	sigma   *mat.Dense
}

// solveAxis solves (s + εI)·x = rhs, normalizes the rows of x and computes the
// new sigma. Nothing is committed; solve or normalization failures are
// reported as ErrNumericalInstability.
func solveAxis(tag string, s, rhs *mat.Dense, eps float64) (axisSolution, error) {
	x, err := matrix.SolveRegularized(s, eps, rhs)
	if err != nil {
		return axisSolution{}, unstable(tag, err)
	}
	w, err := matrix.NormalizeRows(x)
	if err != nil {
		return axisSolution{}, unstable(tag, err)
	}
	sig, err := matrix.Gram(x)
	if err != nil {
		return axisSolution{}, cpdErrorf(tag, err)
	}

	return axisSolution{weights: w, factor: x, sigma: sig}, nil
}

// Update1D performs one ALS update of axis k against the full array v.
//
// Implementation:
//   - Stage 1: S = HoleOverlap(σ, k).
//   - Stage 2: b = contraction of v against every factor except k (r × N_k).
//   - Stage 3: Solve (S + εI)·x = b; row norms of x become the weights and the
//     normalized rows the new f_k.
//   - Stage 4: Commit f_k, weights and sigma_k together.
//
// Errors:
//   - ErrAxis for k out of range, ErrShapeMismatch when st does not fit v.
//   - ErrNumericalInstability when the solve fails; st is unchanged.
//
// Complexity:
//   - Time O(r·ΠN + r³ + r²·N_k), Space O(r·ΠN/N_last).
func Update1D(v *tensor.Dense, st *State, k int, eps float64) error {
	if !st.fits(v) {
		return cpdErrorf(opUpdate1D, ErrShapeMismatch)
	}
	if k < 0 || k >= st.NDim() {
		return cpdErrorf(opUpdate1D, ErrAxis)
	}

	s, err := HoleOverlap(st.sigmas, k)
	if err != nil {
		return cpdErrorf(opUpdate1D, err)
	}
	b, err := tensor.ContractExcept(v, st.factors, k)
	if err != nil {
		return cpdErrorf(opUpdate1D, err)
	}
	sol, err := solveAxis(opUpdate1D, s, b, eps)
	if err != nil {
		return err
	}
	st.commitAxis(k, sol.factor, sol.sigma, sol.weights)

	return nil
}
