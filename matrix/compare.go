// SPDX-License-Identifier: MIT

package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped "AllClose").
//
// Notes:
//   - Any NaN makes the comparison false.
//   - AllClose with small atol/rtol is ideal for invariance tests in unit tests.
func AllClose(a, b mat.Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, ErrDimensionMismatch)
	}

	r, c := a.Dims()
	var i, j int
	var x, y float64
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			x, y = a.At(i, j), b.At(i, j)
			if !(math.Abs(x-y) <= atol+rtol*math.Abs(y)) {
				return false, nil
			}
		}
	}

	return true, nil
}
