// SPDX-License-Identifier: MIT

package tensor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ContractExcept contracts v against every factor except the free axes.
//
// factors[k] is r×N_k. free lists 0, 1 or 2 axes in strictly ascending order.
// The result is r × Π_{k∈free} N_k, with the free axes flattened row-major in
// ascending axis order:
//
//	out[m, a]    = Σ v[.., a, ..] Π_{k≠free} f_k[m, i_k]         (one free axis)
//	out[m, a·Nj+b] = Σ v[.., a, .., b, ..] Π_{k∉free} f_k[m, i_k] (two free axes)
//
// With no axis left to contract the array is broadcast to every component.
//
// Implementation:
//   - Stage 1: Validate factors (count, rows, columns) and free axes.
//   - Stage 2: Contract the last non-free axis against the whole factor; if it
//     is the trailing axis this is a single gemm R = F·Vᵀ.
//   - Stage 3: Contract the remaining non-free axes from last to first, pairing
//     component m with row m of each factor.
//
// Errors:
//   - ErrFactorMismatch, ErrAxis (wrapped "ContractExcept").
//
// Complexity:
//   - Time O(r·ΠN_k), Space O(r·ΠN_k / N_last).
func ContractExcept(v *Dense, factors []*mat.Dense, free ...int) (*mat.Dense, error) {
	r, err := checkFactors(v, factors)
	if err != nil {
		return nil, tensorErrorf(opContract, err)
	}
	if err = checkFree(v.NDim(), free); err != nil {
		return nil, tensorErrorf(opContract, err)
	}

	isFree := make([]bool, v.NDim())
	for _, k := range free {
		isFree[k] = true
	}
	var contracted []int
	for k := 0; k < v.NDim(); k++ {
		if !isFree[k] {
			contracted = append(contracted, k)
		}
	}

	if len(contracted) == 0 {
		out := mat.NewDense(r, v.Len(), nil)
		for m := 0; m < r; m++ {
			copy(out.RawRowView(m), v.data)
		}
		return out, nil
	}

	dims := v.Shape()
	last := contracted[len(contracted)-1]
	cur := contractFirst(v.data, dims, last, factors[last])
	dims = removeAxis(dims, last)

	for c := len(contracted) - 2; c >= 0; c-- {
		k := contracted[c]
		cur = contractPaired(cur, r, dims, k, factors[k])
		dims = removeAxis(dims, k)
	}

	width := 1
	for _, n := range dims {
		width *= n
	}

	return mat.NewDense(r, width, cur), nil
}

// contractFirst computes out[m, o, i] = Σ_n data[o, n, i]·f[m, n] where axis
// is split into outer o (axes before) and inner i (axes after).
func contractFirst(data []float64, dims []int, axis int, f *mat.Dense) []float64 {
	r, n := f.Dims()
	outer, inner := split(dims, axis)

	if inner == 1 {
		// (r × n)·(outer × n)ᵀ
		vm := mat.NewDense(outer, n, data)
		var res mat.Dense
		res.Mul(f, vm.T())
		return denseData(&res, r, outer)
	}

	out := make([]float64, r*outer*inner)
	block := mat.NewDense(r, inner, nil)
	var o, m int
	for o = 0; o < outer; o++ {
		vb := mat.NewDense(n, inner, data[o*n*inner:(o+1)*n*inner])
		block.Mul(f, vb)
		for m = 0; m < r; m++ {
			copy(out[(m*outer+o)*inner:(m*outer+o+1)*inner], block.RawRowView(m))
		}
	}

	return out
}

// contractPaired computes out[m, o, i] = Σ_n cur[m, o, n, i]·f[m, n].
func contractPaired(cur []float64, r int, dims []int, axis int, f *mat.Dense) []float64 {
	_, n := f.Dims()
	outer, inner := split(dims, axis)
	out := make([]float64, r*outer*inner)

	var m, o, q, i int
	var src, dst []float64
	var row []float64
	var w float64
	for m = 0; m < r; m++ {
		row = f.RawRowView(m)
		for o = 0; o < outer; o++ {
			base := ((m*outer + o) * n) * inner
			dst = out[(m*outer+o)*inner : (m*outer+o+1)*inner]
			if inner == 1 {
				dst[0] = floats.Dot(cur[base:base+n], row)
				continue
			}
			for q = 0; q < n; q++ {
				w = row[q]
				src = cur[base+q*inner : base+(q+1)*inner]
				for i = 0; i < inner; i++ {
					dst[i] += w * src[i]
				}
			}
		}
	}

	return out
}

// split returns the products of extents before and after axis.
func split(dims []int, axis int) (int, int) {
	outer, inner := 1, 1
	for k, d := range dims {
		switch {
		case k < axis:
			outer *= d
		case k > axis:
			inner *= d
		}
	}

	return outer, inner
}

func removeAxis(dims []int, axis int) []int {
	out := make([]int, 0, len(dims)-1)
	out = append(out, dims[:axis]...)
	return append(out, dims[axis+1:]...)
}

// denseData returns the row-major content of d as a fresh or owned slice.
func denseData(d *mat.Dense, r, c int) []float64 {
	raw := d.RawMatrix()
	if raw.Stride == c {
		return raw.Data[:r*c]
	}
	out := make([]float64, r*c)
	for m := 0; m < r; m++ {
		copy(out[m*c:(m+1)*c], d.RawRowView(m))
	}

	return out
}

// checkFactors validates factor count and shapes and returns the rank.
func checkFactors(v *Dense, factors []*mat.Dense) (int, error) {
	if v == nil || len(factors) != v.NDim() {
		return 0, ErrFactorMismatch
	}
	r := -1
	for k, f := range factors {
		if f == nil {
			return 0, ErrFactorMismatch
		}
		fr, fc := f.Dims()
		if fc != v.shape[k] || (r >= 0 && fr != r) {
			return 0, ErrFactorMismatch
		}
		r = fr
	}

	return r, nil
}

// checkFree validates 0..2 strictly ascending in-range axes.
func checkFree(ndim int, free []int) error {
	if len(free) > 2 {
		return ErrAxis
	}
	for q, k := range free {
		if k < 0 || k >= ndim {
			return ErrAxis
		}
		if q > 0 && free[q-1] >= k {
			return ErrAxis
		}
	}

	return nil
}
