// SPDX-License-Identifier: MIT

package cpd

import (
	"github.com/katalvlaran/alscpd/matrix"
	"github.com/katalvlaran/alscpd/sampling"
	"gonum.org/v1/gonum/mat"
)

// MonteCarlo is the sampled analogue of the overlap algebra. It keeps, per
// axis, the factor rows gathered at the sample indices (r × s) and rebuilds
// them after every update it performs.
//
// The normal equations use
//
//	Ω = ⊙_{k∉holes} rows_k      (r × s)
//	Z = Ω·Ωᵀ
//	d = Ω·cutᵀ                  (1D: cut N_k × s; 2D: cut (N_i·N_j) × s)
//
// A MonteCarlo is bound to one State; updating that State through other
// means requires Regather.
type MonteCarlo struct {
	set  *sampling.Set
	idx  [][]int
	rows []*mat.Dense
}

// NewMonteCarlo gathers the sampled rows of st.
//
// Errors:
//   - ErrSamplingRequired when set is nil.
//   - ErrShapeMismatch when the set grid does not match st.
func NewMonteCarlo(set *sampling.Set, st *State) (*MonteCarlo, error) {
	if set == nil {
		return nil, cpdErrorf(opMonteCarlo, ErrSamplingRequired)
	}
	shape := st.Shape()
	grid := set.Shape()
	if len(shape) != len(grid) {
		return nil, cpdErrorf(opMonteCarlo, ErrShapeMismatch)
	}
	for k := range shape {
		if shape[k] != grid[k] {
			return nil, cpdErrorf(opMonteCarlo, ErrShapeMismatch)
		}
	}

	mc := &MonteCarlo{set: set, idx: set.Indices(), rows: make([]*mat.Dense, len(shape))}
	mc.Regather(st)

	return mc, nil
}

// Regather refreshes every sampled row from st.
func (mc *MonteCarlo) Regather(st *State) {
	for k := range mc.rows {
		mc.rows[k] = gatherRows(st.factors[k], mc.idx, k)
	}
}

// Rows returns a copy of the sampled rows of axis k (r × s).
func (mc *MonteCarlo) Rows(k int) *mat.Dense { return mat.DenseCopyOf(mc.rows[k]) }

// gatherRows returns f[:, idx[p][k]] for every sample p.
func gatherRows(f *mat.Dense, idx [][]int, k int) *mat.Dense {
	r, _ := f.Dims()
	out := mat.NewDense(r, len(idx), nil)
	var m, p int
	for m = 0; m < r; m++ {
		src := f.RawRowView(m)
		dst := out.RawRowView(m)
		for p = range idx {
			dst[p] = src[idx[p][k]]
		}
	}
	return out
}

// Omega returns the pointwise product of the sampled rows of every axis not
// in excluded (r × s).
func (mc *MonteCarlo) Omega(excluded ...int) (*mat.Dense, error) {
	if err := checkHoles(len(mc.rows), excluded); err != nil {
		return nil, cpdErrorf(opMonteCarlo, err)
	}
	r, s := mc.rows[0].Dims()
	data := make([]float64, r*s)
	for i := range data {
		data[i] = 1
	}
	out := mat.NewDense(r, s, data)
	for k, rows := range mc.rows {
		if isExcluded(k, excluded) {
			continue
		}
		out.MulElem(out, rows)
	}

	return out, nil
}

// normal builds Z = Ω·Ωᵀ and d = Ω·cutᵀ for the given holes.
func (mc *MonteCarlo) normal(cut *mat.Dense, holes ...int) (*mat.Dense, *mat.Dense, error) {
	om, err := mc.Omega(holes...)
	if err != nil {
		return nil, nil, err
	}
	r, s := om.Dims()
	n, cs := cut.Dims()
	if cs != s {
		return nil, nil, cpdErrorf(opMonteCarlo, ErrShapeMismatch)
	}
	z, err := matrix.Gram(om)
	if err != nil {
		return nil, nil, cpdErrorf(opMonteCarlo, err)
	}
	d := mat.NewDense(r, n, nil)
	d.Mul(om, cut.T())

	return z, d, nil
}

// Update1D updates axis k of st from the 1D cuts of the sampling set, then
// refreshes sigma_k and the sampled rows of k.
//
// Errors:
//   - sampling.ErrNotReady when the set has no 1D cuts.
//   - ErrAxis, ErrShapeMismatch, ErrNumericalInstability; st is unchanged on error.
func (mc *MonteCarlo) Update1D(st *State, k int, eps float64) error {
	if k < 0 || k >= st.NDim() {
		return cpdErrorf(opMonteCarlo, ErrAxis)
	}
	cuts, err := mc.set.Cuts1D()
	if err != nil {
		return cpdErrorf(opMonteCarlo, err)
	}
	z, d, err := mc.normal(cuts[k], k)
	if err != nil {
		return err
	}
	if _, n := d.Dims(); n != st.Shape()[k] {
		return cpdErrorf(opMonteCarlo, ErrShapeMismatch)
	}
	sol, err := solveAxis(opMonteCarlo, z, d, eps)
	if err != nil {
		return err
	}
	st.commitAxis(k, sol.factor, sol.sigma, sol.weights)
	mc.rows[k] = gatherRows(st.factors[k], mc.idx, k)

	return nil
}

// Update2D updates the pair (i, j) of st from the 2D cuts: the sampled joint
// solution x_ij = (Z + εI)⁻¹·d is reduced and refined against the full-grid
// S_ij exactly as in Update2D. Sigmas and sampled rows of i and j are refreshed.
func (mc *MonteCarlo) Update2D(st *State, i, j int, strategy Strategy, eps float64) error {
	return mc.updatePair(st, i, j, defaultPairConfig(strategy, eps))
}

func (mc *MonteCarlo) updatePair(st *State, i, j int, cfg pairConfig) error {
	if err := checkPair(st, i, j, cfg); err != nil {
		return cpdErrorf(opMonteCarlo, err)
	}
	cuts, err := mc.set.Cuts2D()
	if err != nil {
		return cpdErrorf(opMonteCarlo, err)
	}
	p := sampling.PairIndex(st.NDim(), i, j)
	z, d, err := mc.normal(cuts[p], i, j)
	if err != nil {
		return err
	}
	shape := st.Shape()
	if _, n := d.Dims(); n != shape[i]*shape[j] {
		return cpdErrorf(opMonteCarlo, ErrShapeMismatch)
	}
	x, err := matrix.SolveRegularized(z, cfg.eps, d)
	if err != nil {
		return unstable(opMonteCarlo, err)
	}
	sij, err := HoleOverlap(st.sigmas, i, j)
	if err != nil {
		return cpdErrorf(opMonteCarlo, err)
	}

	work, _, err := reduceAndRefine(st, i, j, sij, x, cfg)
	if err != nil {
		return err
	}
	commitPair(st, i, j, work)
	mc.rows[i] = gatherRows(st.factors[i], mc.idx, i)
	mc.rows[j] = gatherRows(st.factors[j], mc.idx, j)

	return nil
}
