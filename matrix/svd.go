// SPDX-License-Identifier: MIT
// Package matrix: thin SVD helpers.
//
// Purpose:
//   - DominantTriplet: leading (σ₀, u₀, v₀) of a matrix, used for rank-1 reduction.
//   - ThinSVD: full thin factorization a = U·diag(S)·Vᵀ.
//   - KeptCount: truncation rule over a batch of singular spectra.
//
// Notes:
//   - Singular vector signs follow gonum (LAPACK); only σ·u·vᵀ is sign-stable.

package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// Factorization is a thin SVD a = U·diag(Values)·Vᵀ with U m×k, V n×k, k = min(m, n).
type Factorization struct {
	U      *mat.Dense
	Values []float64
	V      *mat.Dense
}

// ThinSVD factorizes a (m×n) into its thin SVD.
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf (wrapped "ThinSVD").
//   - ErrSVDFailed when the iteration does not converge.
//
// Complexity: O(m·n·min(m,n)).
func ThinSVD(a mat.Matrix) (Factorization, error) {
	if err := ValidateNotNil(a); err != nil {
		return Factorization{}, matrixErrorf(opThinSVD, err)
	}
	if err := ValidateFinite(a); err != nil {
		return Factorization{}, matrixErrorf(opThinSVD, ErrNaNInf)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return Factorization{}, matrixErrorf(opThinSVD, ErrSVDFailed)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	return Factorization{U: &u, Values: svd.Values(nil), V: &v}, nil
}

// DominantTriplet returns the leading singular value and its left/right
// singular vectors (fresh slices of length m and n).
func DominantTriplet(a mat.Matrix) (float64, []float64, []float64, error) {
	f, err := ThinSVD(a)
	if err != nil {
		return 0, nil, nil, matrixErrorf(opDominant, err)
	}

	m, _ := f.U.Dims()
	n, _ := f.V.Dims()
	u := make([]float64, m)
	v := make([]float64, n)
	mat.Col(u, 0, f.U)
	mat.Col(v, 0, f.V)

	return f.Values[0], u, v, nil
}

// KeptCount returns the smallest k ≥ 1 such that, for every spectrum in
// values, the discarded squared energy Σ_{q≥k} σ_q² is at most tol.
// The result never exceeds the longest spectrum length.
//
// Complexity: O(total number of singular values).
func KeptCount(values [][]float64, tol float64) int {
	width := 0
	for _, s := range values {
		if len(s) > width {
			width = len(s)
		}
	}
	if width == 0 {
		return 0
	}

	// tails[k] = max over spectra of Σ_{q≥k} σ_q².
	tails := make([]float64, width+1)
	var q int
	var acc float64
	for _, s := range values {
		acc = 0
		for q = len(s) - 1; q >= 0; q-- {
			acc += s[q] * s[q]
			if acc > tails[q] {
				tails[q] = acc
			}
		}
	}

	for k := 1; k < width; k++ {
		if tails[k] <= tol {
			return k
		}
	}

	return width
}
