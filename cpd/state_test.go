package cpd_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewState_Invariants(t *testing.T) {
	st := randomState(t, []int{3, 4, 5}, 3)
	require.Equal(t, 3, st.Rank())
	require.Equal(t, []int{3, 4, 5}, st.Shape())
	require.Equal(t, []float64{0, 0, 0}, st.Weights())
	requireUnitRows(t, st)
	requireSigmasFresh(t, st)

	_, err := cpd.NewState([]int{3}, 0, nil)
	require.ErrorIs(t, err, cpd.ErrInvalidRank)
	_, err = cpd.NewState(nil, 2, nil)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
	_, err = cpd.NewState([]int{3, 0}, 2, nil)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
}

func TestNewStateFrom_CopiesInputs(t *testing.T) {
	f := mat.NewDense(1, 2, []float64{0.6, 0.8})
	w := []float64{2}
	st, err := cpd.NewStateFrom(w, []*mat.Dense{f, f})
	require.NoError(t, err)

	f.Set(0, 0, 9)
	w[0] = 9
	assert.Equal(t, 0.6, st.Factor(0).At(0, 0))
	assert.Equal(t, []float64{2}, st.Weights())
	requireSigmasFresh(t, st)

	_, err = cpd.NewStateFrom([]float64{1, 2}, []*mat.Dense{f})
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
	_, err = cpd.NewStateFrom(nil, []*mat.Dense{f})
	require.ErrorIs(t, err, cpd.ErrInvalidRank)
}

func TestHoleOverlap_Invariant(t *testing.T) {
	st := randomState(t, []int{3, 4, 5, 2}, 4)
	sigmas := st.Sigmas()

	full, err := cpd.HoleOverlap(sigmas)
	require.NoError(t, err)
	for k := range sigmas {
		hole, err := cpd.HoleOverlap(sigmas, k)
		require.NoError(t, err)
		back, err := matrix.Hadamard(hole, sigmas[k])
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(full, back, 1e-14), "axis %d", k)
	}

	pair, err := cpd.HoleOverlap(sigmas, 1, 3)
	require.NoError(t, err)
	want, err := matrix.Hadamard(sigmas[0], sigmas[2])
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(pair, want, 1e-14))
}

func TestHoleOverlap_EmptyProductAndErrors(t *testing.T) {
	st := randomState(t, []int{3, 4}, 2)
	ones, err := cpd.HoleOverlap(st.Sigmas(), 0, 1)
	require.NoError(t, err)
	require.True(t, mat.Equal(ones, matrix.Ones(2)))

	cases := []struct {
		name     string
		excluded []int
		want     error
	}{
		{"three holes", []int{0, 1, 0}, cpd.ErrTooManyHoles},
		{"negative", []int{-1}, cpd.ErrAxis},
		{"out of range", []int{2}, cpd.ErrAxis},
		{"repeated", []int{1, 1}, cpd.ErrAxis},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cpd.HoleOverlap(st.Sigmas(), tc.excluded...)
			require.ErrorIs(t, err, tc.want)
		})
	}
	_, err = cpd.HoleOverlap(nil)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
}

func TestRefreshSigma(t *testing.T) {
	st := randomState(t, []int{3, 4}, 2)
	require.NoError(t, st.RefreshSigma(1))
	requireSigmasFresh(t, st)
	require.ErrorIs(t, st.RefreshSigma(2), cpd.ErrAxis)
}

func TestChangeRank_KeepsPrefix(t *testing.T) {
	v := rank1Cube(t)
	d, err := cpd.New(v, 2, cpd.WithSeed(seedDet))
	require.NoError(t, err)
	_, err = d.Run1D(context.Background(), 3, 0)
	require.NoError(t, err)

	st := d.State()
	before := st.Factors()
	recon, err := st.Reconstruct()
	require.NoError(t, err)

	require.NoError(t, st.ChangeRank(5, rand.New(rand.NewSource(3))))
	require.Equal(t, 5, st.Rank())
	requireUnitRows(t, st)
	requireSigmasFresh(t, st)

	w := st.Weights()
	assert.Equal(t, []float64{0, 0, 0}, w[2:])
	for k, f := range st.Factors() {
		for m := 0; m < 2; m++ {
			require.Equal(t, before[k].RawRowView(m), f.RawRowView(m), "axis %d row %d", k, m)
		}
	}
	after, err := st.Reconstruct()
	require.NoError(t, err)
	require.Equal(t, recon.Data(), after.Data())

	// equal rank is a no-op
	require.NoError(t, st.ChangeRank(5, nil))
	require.Equal(t, 5, st.Rank())
}

func TestChangeRank_RejectsShrink(t *testing.T) {
	st := randomState(t, []int{3, 4}, 3)
	snap := st.Clone()

	err := st.ChangeRank(2, nil)
	require.ErrorIs(t, err, cpd.ErrInvalidRank)

	var ire *cpd.InvalidRankError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, 3, ire.Current)
	assert.Equal(t, 2, ire.Requested)

	require.Equal(t, snap.Weights(), st.Weights())
	for k := range snap.Factors() {
		require.True(t, mat.Equal(snap.Factor(k), st.Factor(k)))
		require.True(t, mat.Equal(snap.Sigma(k), st.Sigma(k)))
	}
}
