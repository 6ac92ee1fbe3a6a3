package cpd_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/tensor"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const (
	// tolUnit bounds the deviation of a row norm from 1.
	tolUnit = 1e-10

	// seedDet is the seed used by every decomposer built in these tests.
	seedDet = int64(42)
)

// outer builds the rank-1 array a ⊗ b ⊗ ….
func outer(t *testing.T, vecs ...[]float64) *tensor.Dense {
	t.Helper()
	shape := make([]int, len(vecs))
	for k, v := range vecs {
		shape[k] = len(v)
	}
	out, err := tensor.New(shape, nil)
	require.NoError(t, err)

	idx := make([]int, len(vecs))
	for n := range out.Data() {
		val := 1.0
		for k := range vecs {
			val *= vecs[k][idx[k]]
		}
		out.Data()[n] = val
		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return out
}

// rank1Cube is the 4×4×4 array (1,2,3,4)⊗(1,1,2,2)⊗(0.5,1,1.5,2).
func rank1Cube(t *testing.T) *tensor.Dense {
	return outer(t, []float64{1, 2, 3, 4}, []float64{1, 1, 2, 2}, []float64{0.5, 1, 1.5, 2})
}

// randomState returns a random state of the given shape and rank.
func randomState(t *testing.T, shape []int, rank int) *cpd.State {
	t.Helper()
	st, err := cpd.NewState(shape, rank, rand.New(rand.NewSource(seedDet)))
	require.NoError(t, err)
	return st
}

// requireUnitRows asserts every row of every factor has unit norm.
func requireUnitRows(t *testing.T, st *cpd.State) {
	t.Helper()
	for k, f := range st.Factors() {
		r, _ := f.Dims()
		for m := 0; m < r; m++ {
			require.InDelta(t, 1, mat.Norm(f.RowView(m), 2), tolUnit, "axis %d row %d", k, m)
		}
	}
}

// requireSigmasFresh asserts sigma_k equals the Gram matrix of factor k.
func requireSigmasFresh(t *testing.T, st *cpd.State) {
	t.Helper()
	for k, f := range st.Factors() {
		var g mat.Dense
		g.Mul(f, f.T())
		require.True(t, mat.EqualApprox(&g, st.Sigma(k), 1e-12), "sigma %d is stale", k)
	}
}

// relErr returns ‖a − b‖ / ‖b‖ over the raw data.
func relErr(a, b []float64) float64 {
	var num, den float64
	for i := range a {
		d := a[i] - b[i]
		num += d * d
		den += b[i] * b[i]
	}
	return math.Sqrt(num / den)
}
