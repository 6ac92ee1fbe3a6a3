// SPDX-License-Identifier: MIT

package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NormalizeRows scales every row of x to unit L2 norm in place and returns the
// original row norms (the CP weights).
//
// Errors:
//   - ErrNilMatrix when x is nil.
//   - ErrSingular when a row has zero norm; x is left untouched in that case.
//
// Complexity: O(r·N).
func NormalizeRows(x *mat.Dense) ([]float64, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, matrixErrorf(opNormalize, err)
	}

	r, _ := x.Dims()
	norms := make([]float64, r)
	var i int
	for i = 0; i < r; i++ {
		norms[i] = floats.Norm(x.RawRowView(i), 2)
		if norms[i] == 0 {
			return nil, matrixErrorf(opNormalize, ErrSingular)
		}
	}
	for i = 0; i < r; i++ {
		floats.Scale(1/norms[i], x.RawRowView(i))
	}

	return norms, nil
}

// NormalizeRowRange normalizes rows [from, to) of x in place. Rows outside the
// range are not touched. Used when appending fresh random rows to a factor.
func NormalizeRowRange(x *mat.Dense, from, to int) error {
	if err := ValidateNotNil(x); err != nil {
		return matrixErrorf(opNormalize, err)
	}
	r, _ := x.Dims()
	if from < 0 || to > r || from > to {
		return matrixErrorf(opNormalize, ErrOutOfRange)
	}

	var i int
	var n float64
	for i = from; i < to; i++ {
		n = floats.Norm(x.RawRowView(i), 2)
		if n == 0 {
			return matrixErrorf(opNormalize, ErrSingular)
		}
		floats.Scale(1/n, x.RawRowView(i))
	}

	return nil
}
