// SPDX-License-Identifier: MIT
// Package matrix: Gram and Hadamard products.
//
// Purpose:
//   - Gram(x) = x·xᵀ for r×N factor matrices (per-axis sigma).
//   - Hadamard(a, b) elementwise product of equally shaped matrices.
//   - Ones(r) all-ones r×r (identity element of the Hadamard product).

package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// Gram returns x·xᵀ as a fresh r×r Dense.
//
// Implementation:
//   - Stage 1: Validate x (non-nil).
//   - Stage 2: Single gonum Mul against the transposed view, then symmetrize
//     the result so that Gram(x)[i][j] == Gram(x)[j][i] bit-for-bit.
//
// Errors:
//   - ErrNilMatrix (wrapped with "Gram").
//
// Complexity:
//   - Time O(r²·N), Space O(r²).
func Gram(x mat.Matrix) (*mat.Dense, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opGram, err)
	}

	r, _ := x.Dims()
	out := mat.NewDense(r, r, nil)
	out.Mul(x, x.T())

	// gemm may round the two triangles differently.
	var i, j int
	var avg float64
	for i = 0; i < r; i++ {
		for j = i + 1; j < r; j++ {
			avg = 0.5 * (out.At(i, j) + out.At(j, i))
			out.Set(i, j, avg)
			out.Set(j, i, avg)
		}
	}

	return out, nil
}

// Hadamard returns the elementwise product a ⊙ b.
// Complexity: O(r*c).
func Hadamard(a, b mat.Matrix) (*mat.Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, ErrDimensionMismatch)
	}

	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.MulElem(a, b)

	return out, nil
}

// HadamardInPlace multiplies dst by b elementwise. Shapes must match.
func HadamardInPlace(dst *mat.Dense, b mat.Matrix) error {
	if err := ValidateNotNil(dst); err != nil {
		return matrixErrorf(opHadamard, err)
	}
	if err := ValidateSameShape(dst, b); err != nil {
		return matrixErrorf(opHadamard, ErrDimensionMismatch)
	}
	dst.MulElem(dst, b)

	return nil
}

// Ones returns an r×r matrix filled with 1.
func Ones(r int) *mat.Dense {
	data := make([]float64, r*r)
	for i := range data {
		data[i] = 1
	}

	return mat.NewDense(r, r, data)
}
