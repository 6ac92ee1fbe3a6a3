// SPDX-License-Identifier: MIT
// Package matrix: regularized normal-equation solve.

package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SolveRegularized solves (S + eps·I)·X = B for X, where S is a symmetric
// positive semi-definite r×r matrix (a Gram or hole-overlap matrix) and B is r×M.
//
// Implementation:
//   - Stage 1: Validate S (non-nil, square, finite) and B (non-nil, r rows, finite).
//   - Stage 2: Copy S into a SymDense taking the average of the two triangles,
//     add eps on the diagonal.
//   - Stage 3: Cholesky factorization and SolveTo. A failed factorization or a
//     mat.Condition report is surfaced as ErrSingular.
//
// Behavior highlights:
//   - S and B are never mutated.
//   - The result is a fresh r×M Dense.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch, ErrNaNInf (wrapped "SolveRegularized").
//   - ErrSingular when S + eps·I is not numerically positive definite.
//
// Complexity:
//   - Time O(r³ + r²·M), Space O(r² + r·M).
func SolveRegularized(s mat.Matrix, eps float64, b mat.Matrix) (*mat.Dense, error) {
	var err error
	if err = ValidateNotNil(s); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if err = ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if err = ValidateSquare(s); err != nil {
		return nil, matrixErrorf(opSolve, ErrNonSquare)
	}
	r, _ := s.Dims()
	br, bc := b.Dims()
	if br != r {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	if err = ValidateFinite(s); err != nil {
		return nil, matrixErrorf(opSolve, ErrNaNInf)
	}
	if err = ValidateFinite(b); err != nil {
		return nil, matrixErrorf(opSolve, ErrNaNInf)
	}

	sym := mat.NewSymDense(r, nil)
	var i, j int
	for i = 0; i < r; i++ {
		sym.SetSym(i, i, s.At(i, i)+eps)
		for j = i + 1; j < r; j++ {
			sym.SetSym(i, j, 0.5*(s.At(i, j)+s.At(j, i)))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, matrixErrorf(opSolve, ErrSingular)
	}

	x := mat.NewDense(r, bc, nil)
	if err = chol.SolveTo(x, b); err != nil {
		return nil, matrixErrorf(opSolve, ErrSingular)
	}
	for _, v := range x.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, matrixErrorf(opSolve, ErrSingular)
		}
	}

	return x, nil
}
