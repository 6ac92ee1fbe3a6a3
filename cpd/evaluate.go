// SPDX-License-Identifier: MIT

package cpd

import (
	"math"

	"github.com/katalvlaran/alscpd/tensor"
	"gonum.org/v1/gonum/floats"
)

// Evaluate computes the convergence functional of st against v:
//
//	left  = mean((V − recon)²)
//	right = ε·Σc² / |V|
//	Errors{Left: √left·scale, Right: √right·scale, Total: √(left+right)·scale}
//
// Complexity: O(r·ΠN).
func Evaluate(v *tensor.Dense, st *State, eps, unitScale float64) (Errors, error) {
	if !st.fits(v) {
		return Errors{}, cpdErrorf(opEvaluate, ErrShapeMismatch)
	}
	recon, err := st.Reconstruct()
	if err != nil {
		return Errors{}, cpdErrorf(opEvaluate, err)
	}

	n := float64(v.Len())
	dist := floats.Distance(v.Data(), recon.Data(), 2)
	left := dist * dist / n
	right := eps * floats.Dot(st.weights, st.weights) / n

	return Errors{
		Left:  math.Sqrt(left) * unitScale,
		Right: math.Sqrt(right) * unitScale,
		Total: math.Sqrt(left+right) * unitScale,
	}, nil
}
