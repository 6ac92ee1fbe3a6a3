// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Single source of truth for shape/nil/finiteness checks.
//   - Return plain sentinels wrapped with the validator tag; kernels add their own tag.
//
// Determinism & Performance:
//   - Pure checks, no allocation. ValidateFinite is O(r*c); the rest are O(1).

package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValidateNotNil ensures the matrix reference is non-nil.
// Complexity: O(1).
func ValidateNotNil(m mat.Matrix) error {
	if m == nil {
		return matrixErrorf(opValidating, ErrNilMatrix)
	}
	// A typed-nil *mat.Dense still satisfies the interface; treat it as nil too.
	if d, ok := m.(*mat.Dense); ok && d == nil {
		return matrixErrorf(opValidating, ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks Rows == Cols. Assumes m is non-nil.
// Complexity: O(1).
func ValidateSquare(m mat.Matrix) error {
	r, c := m.Dims()
	if r != c {
		return matrixErrorf(opValidating, ErrNonSquare)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions. Assumes both non-nil.
// Complexity: O(1).
func ValidateSameShape(a, b mat.Matrix) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return matrixErrorf(opValidating, ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite rejects NaN and ±Inf entries.
// Complexity: O(r*c).
func ValidateFinite(m mat.Matrix) error {
	r, c := m.Dims()
	var i, j int
	var v float64
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v = m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return matrixErrorf(opValidating, ErrNaNInf)
			}
		}
	}

	return nil
}
