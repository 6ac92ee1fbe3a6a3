// SPDX-License-Identifier: MIT

package cpd

import (
	"math"

	"github.com/katalvlaran/alscpd/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// refine runs the sub-iteration refinement of a pair update on w.
//
// Each round solves axis i with S_i = S_ij ⊙ sigma_j and the right-hand side
//
//	rhs_i[r,n] = Σ_r' S_ij[r,r'] · Y_i[r',r,n],  Y_i[r',r,n] = Σ_b x[r',n,b] f_j[r,b]
//
// then axis j the same way with the fresh sigma_i. After every round the
// closed-form functional
//
//	√(a² − 2ab + b² + reg) · unitScale
//
// is appended to the history, which starts as [a², 0]. Rounds stop when two
// consecutive entries differ by at most history[0]/100 or after
// cfg.subIterations rounds. A negative radicand gives NaN, which also stops.
//
// The returned slice is the full history.
func refine(w *pairWork, sij, x *mat.Dense, ni, nj int, cfg pairConfig) ([]float64, error) {
	r := len(w.weights)
	nx := float64(r * ni * nj)

	gx, err := matrix.Gram(x)
	if err != nil {
		return nil, cpdErrorf(opRefine, err)
	}
	a2 := hadamardSum(sij, gx) / nx
	hist := []float64{a2, 0}

	var svds []matrix.Factorization
	var kept int
	if cfg.strategy.truncated() {
		if svds, kept, err = componentSVDs(x, r, ni, nj, cfg.tolerance); err != nil {
			return nil, err
		}
	}

	var si, sj, rhs *mat.Dense
	var sol axisSolution
	for round := 0; round < cfg.subIterations; round++ {
		last := len(hist) - 1
		if !(math.Abs(hist[last-1]-hist[last]) > hist[0]/100) {
			break
		}

		// axis i against the current f_j
		if si, err = matrix.Hadamard(sij, w.sj); err != nil {
			return nil, cpdErrorf(opRefine, err)
		}
		rhs = refineRHS(cfg.strategy, sij, x, w.fj, svds, kept, ni, nj, false)
		if sol, err = solveAxis(opRefine, si, rhs, cfg.eps); err != nil {
			return nil, err
		}
		w.weights, w.fi, w.si = sol.weights, sol.factor, sol.sigma

		// axis j against the fresh f_i
		if sj, err = matrix.Hadamard(sij, w.si); err != nil {
			return nil, cpdErrorf(opRefine, err)
		}
		rhs = refineRHS(cfg.strategy, sij, x, w.fi, svds, kept, ni, nj, true)
		if sol, err = solveAxis(opRefine, sj, rhs, cfg.eps); err != nil {
			return nil, err
		}
		w.weights, w.fj, w.sj = sol.weights, sol.factor, sol.sigma

		hist = append(hist, refinementError(a2, sij, sj, x, w, ni, nj, cfg))
	}

	return hist, nil
}

// refinementError evaluates √(a² − 2ab + b² + reg)·unitScale where
//
//	2ab = 2 Σ S_ij[r',r]·O[r',r]·c[r] / |x|,  O[r',r] = Σ x[r',a,b] f_i[r,a] f_j[r,b]
//	b²  = Σ (S_j ⊙ sigma_j) ⊙ (c cᵀ) / |x|
//	reg = ε Σ_r S_j[r,r] Σ_n f_j[r,n]² / |x|
//
// The cross term is subtracted; the radicand is not clamped.
func refinementError(a2 float64, sij, sj, x *mat.Dense, w *pairWork, ni, nj int, cfg pairConfig) float64 {
	r := len(w.weights)
	nx := float64(r * ni * nj)
	c := w.weights

	t := mat.NewDense(r, nj, nil)
	var twoAB float64
	var rp, m, q int
	for rp = 0; rp < r; rp++ {
		t.Mul(w.fi, mat.NewDense(ni, nj, x.RawRowView(rp)))
		for m = 0; m < r; m++ {
			o := floats.Dot(t.RawRowView(m), w.fj.RawRowView(m))
			twoAB += sij.At(rp, m) * o * c[m]
		}
	}
	twoAB = 2 * twoAB / nx

	var b2, reg float64
	for m = 0; m < r; m++ {
		for q = 0; q < r; q++ {
			b2 += sj.At(m, q) * w.sj.At(m, q) * c[m] * c[q]
		}
		row := w.fj.RawRowView(m)
		reg += sj.At(m, m) * floats.Dot(row, row)
	}
	b2 /= nx
	reg = cfg.eps * reg / nx

	return math.Sqrt(a2-twoAB+b2+reg) * cfg.unitScale
}

// refineRHS builds the right-hand side for one side of the refinement.
// sideJ=false solves for f_i (other = f_j); sideJ=true solves for f_j (other = f_i).
func refineRHS(strategy Strategy, sij, x, other *mat.Dense, svds []matrix.Factorization, kept, ni, nj int, sideJ bool) *mat.Dense {
	switch strategy {
	case TruncatedY:
		return truncatedYRHS(sij, other, svds, kept, sideJ)
	case TruncatedB:
		return truncatedBRHS(sij, other, svds, kept, sideJ)
	default:
		return exactRHS(sij, x, other, ni, nj, sideJ)
	}
}

// exactRHS materializes Y[r'] (r × n) from the N_i×N_j slice x[r'] and folds it
// against S_ij.
func exactRHS(sij, x, other *mat.Dense, ni, nj int, sideJ bool) *mat.Dense {
	r, _ := sij.Dims()
	n := ni
	if sideJ {
		n = nj
	}
	rhs := mat.NewDense(r, n, nil)
	y := mat.NewDense(r, n, nil)
	var rp int
	for rp = 0; rp < r; rp++ {
		xr := mat.NewDense(ni, nj, x.RawRowView(rp))
		if sideJ {
			y.Mul(other, xr)
		} else {
			y.Mul(other, xr.T())
		}
		foldY(rhs, sij, y, rp)
	}

	return rhs
}

// foldY adds S_ij[m,r']·Y[r'][m,:] to every rhs row m.
func foldY(rhs, sij, y *mat.Dense, rp int) {
	r, _ := rhs.Dims()
	for m := 0; m < r; m++ {
		floats.AddScaled(rhs.RawRowView(m), sij.At(m, rp), y.RawRowView(m))
	}
}

// componentSVDs factorizes every slice x[m] (N_i×N_j) and returns the kept count.
func componentSVDs(x *mat.Dense, r, ni, nj int, tol float64) ([]matrix.Factorization, int, error) {
	svds := make([]matrix.Factorization, r)
	values := make([][]float64, r)
	var err error
	for m := 0; m < r; m++ {
		if svds[m], err = matrix.ThinSVD(mat.NewDense(ni, nj, x.RawRowView(m))); err != nil {
			return nil, 0, unstable(opRefine, err)
		}
		values[m] = svds[m].Values
	}

	return svds, matrix.KeptCount(values, tol), nil
}

// truncatedAlpha returns the kept "free" singular vectors
// of one component for one side, and the scaled coupling
// alpha[r,q] = σ_q · Σ_b contract[b,q]·other[r,b].
func truncatedAlpha(f matrix.Factorization, other *mat.Dense, kept int, sideJ bool) (mat.Matrix, *mat.Dense) {
	keep, contract := f.U, f.V
	if sideJ {
		keep, contract = f.V, f.U
	}
	nk, _ := keep.Dims()
	nc, _ := contract.Dims()
	keepK := keep.Slice(0, nk, 0, kept)
	contractK := contract.Slice(0, nc, 0, kept)

	r, _ := other.Dims()
	alpha := mat.NewDense(r, kept, nil)
	alpha.Mul(other, contractK)
	for q := 0; q < kept; q++ {
		s := f.Values[q]
		for m := 0; m < r; m++ {
			alpha.Set(m, q, alpha.At(m, q)*s)
		}
	}

	return keepK, alpha
}

// truncatedYRHS builds Y[r'] = alpha[r']·keep[r']ᵀ from the kept triplets and
// folds it against S_ij.
func truncatedYRHS(sij, other *mat.Dense, svds []matrix.Factorization, kept int, sideJ bool) *mat.Dense {
	r, _ := sij.Dims()
	var rhs, y *mat.Dense
	for rp := 0; rp < r; rp++ {
		keepK, alpha := truncatedAlpha(svds[rp], other, kept, sideJ)
		if rhs == nil {
			n, _ := keepK.Dims()
			rhs = mat.NewDense(r, n, nil)
			y = mat.NewDense(r, n, nil)
		}
		y.Mul(alpha, keepK.T())
		foldY(rhs, sij, y, rp)
	}

	return rhs
}

// truncatedBRHS builds rhs = Σ_r' (diag(S_ij[:,r'])·alpha[r'])·keep[r']ᵀ
// without forming Y.
func truncatedBRHS(sij, other *mat.Dense, svds []matrix.Factorization, kept int, sideJ bool) *mat.Dense {
	r, _ := sij.Dims()
	var rhs, term *mat.Dense
	for rp := 0; rp < r; rp++ {
		keepK, alpha := truncatedAlpha(svds[rp], other, kept, sideJ)
		if rhs == nil {
			n, _ := keepK.Dims()
			rhs = mat.NewDense(r, n, nil)
			term = mat.NewDense(r, n, nil)
		}
		for m := 0; m < r; m++ {
			floats.Scale(sij.At(m, rp), alpha.RawRowView(m))
		}
		term.Mul(alpha, keepK.T())
		rhs.Add(rhs, term)
	}

	return rhs
}

// hadamardSum returns Σ a ⊙ b.
func hadamardSum(a, b *mat.Dense) float64 {
	r, c := a.Dims()
	var s float64
	for i := 0; i < r; i++ {
		s += floats.Dot(a.RawRowView(i), b.RawRowView(i)[:c])
	}
	return s
}
