package cpd_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestUpdate1D_KeepsInvariants(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 3)
	for k := 0; k < st.NDim(); k++ {
		require.NoError(t, cpd.Update1D(v, st, k, cpd.DefaultRegularization))
		requireUnitRows(t, st)
		requireSigmasFresh(t, st)
	}
	for _, w := range st.Weights() {
		assert.False(t, math.IsNaN(w))
	}
}

func TestUpdate1D_RecoversRankOne(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 1)
	for sweep := 0; sweep < 2; sweep++ {
		for k := 0; k < st.NDim(); k++ {
			require.NoError(t, cpd.Update1D(v, st, k, 1e-14))
		}
	}
	recon, err := st.Reconstruct()
	require.NoError(t, err)
	require.Less(t, relErr(recon.Data(), v.Data()), 1e-9)
}

func TestUpdate1D_Errors(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 2)
	require.ErrorIs(t, cpd.Update1D(v, st, 3, 0), cpd.ErrAxis)
	require.ErrorIs(t, cpd.Update1D(v, st, -1, 0), cpd.ErrAxis)

	other := randomState(t, []int{4, 4}, 2)
	require.ErrorIs(t, cpd.Update1D(v, other, 0, 0), cpd.ErrShapeMismatch)
}

func TestUpdate1D_SingularSystemLeavesStateUntouched(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 2)
	// Duplicate the rows so every overlap is singular, then solve without ε.
	f := st.Factors()
	for k := range f {
		copy(f[k].RawRowView(1), f[k].RawRowView(0))
	}
	dup, err := cpd.NewStateFrom([]float64{0, 0}, f)
	require.NoError(t, err)
	before := dup.Factors()

	err = cpd.Update1D(v, dup, 0, 0)
	require.ErrorIs(t, err, cpd.ErrNumericalInstability)
	for k := range before {
		require.Equal(t, before[k].RawMatrix().Data, dup.Factor(k).RawMatrix().Data)
	}
}

func TestUpdate2D_KeepsInvariants(t *testing.T) {
	v := rank1Cube(t)
	for _, s := range []cpd.Strategy{cpd.Exact, cpd.TruncatedY, cpd.TruncatedB} {
		t.Run(s.String(), func(t *testing.T) {
			st := randomState(t, v.Shape(), 2)
			require.NoError(t, cpd.Update2D(v, st, 0, 2, s, cpd.DefaultRegularization))
			requireUnitRows(t, st)
			requireSigmasFresh(t, st)
		})
	}
}

func TestUpdate2D_RecoversRankOnePair(t *testing.T) {
	v := outer(t, []float64{1, 2, 3}, []float64{2, 1})
	st := randomState(t, v.Shape(), 1)
	require.NoError(t, cpd.Update2D(v, st, 0, 1, cpd.Exact, 1e-14))

	recon, err := st.Reconstruct()
	require.NoError(t, err)
	require.Less(t, relErr(recon.Data(), v.Data()), 1e-9)
}

func TestUpdate2D_TruncatedStrategiesAgree(t *testing.T) {
	v := outer(t, []float64{1, 2, 3, 4}, []float64{1, -1, 2}, []float64{3, 1, 1, 2}, []float64{1, 2})
	base := randomState(t, v.Shape(), 3)

	y, b := base.Clone(), base.Clone()
	require.NoError(t, cpd.Update2D(v, y, 1, 3, cpd.TruncatedY, cpd.DefaultRegularization))
	require.NoError(t, cpd.Update2D(v, b, 1, 3, cpd.TruncatedB, cpd.DefaultRegularization))

	require.True(t, floats.EqualApprox(y.Weights(), b.Weights(), 1e-8))
	for k := range y.Factors() {
		require.True(t, floats.EqualApprox(y.Factor(k).RawMatrix().Data, b.Factor(k).RawMatrix().Data, 1e-8), "axis %d", k)
	}
}

func TestUpdate2D_Errors(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 2)
	cases := []struct {
		name string
		i, j int
	}{
		{"reversed", 2, 0},
		{"same", 1, 1},
		{"out of range", 0, 3},
		{"negative", -1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, cpd.Update2D(v, st, tc.i, tc.j, cpd.Exact, 0), cpd.ErrAxis)
		})
	}
	require.ErrorIs(t, cpd.Update2D(v, st, 0, 1, cpd.Strategy(9), 0), cpd.ErrStrategy)
}

func TestRefinement_HistoryTermination(t *testing.T) {
	v := outer(t, []float64{1, 2, 3, 4}, []float64{1, 3, 2}, []float64{2, 1, 1})
	st := randomState(t, v.Shape(), 2)

	const rounds = 20
	hist, err := cpd.PairHistory(v, st, 0, 1, cpd.Exact, rounds)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(hist), 2)
	require.LessOrEqual(t, len(hist), rounds+2)
	require.Equal(t, 0.0, hist[1])

	if len(hist) < rounds+2 {
		last := len(hist) - 1
		require.LessOrEqual(t, math.Abs(hist[last-1]-hist[last]), hist[0]/100)
	}

	none, err := cpd.PairHistory(v, st, 0, 1, cpd.Exact, 0)
	require.NoError(t, err)
	require.Len(t, none, 2)
}

func TestEvaluate_Split(t *testing.T) {
	v := rank1Cube(t)
	st := randomState(t, v.Shape(), 2)

	// zero weights: the fit error is the RMS of v and there is no penalty
	e, err := cpd.Evaluate(v, st, cpd.DefaultRegularization, 2)
	require.NoError(t, err)
	rms := floats.Norm(v.Data(), 2) / math.Sqrt(float64(v.Len()))
	assert.InDelta(t, 2*rms, e.Left, 1e-12)
	assert.Equal(t, 0.0, e.Right)
	assert.InDelta(t, e.Left, e.Total, 1e-12)

	w, err := tensor.New([]int{2, 2}, nil)
	require.NoError(t, err)
	_, err = cpd.Evaluate(w, st, 0, 1)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
}
