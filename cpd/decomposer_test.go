package cpd_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/sampling"
	"github.com/katalvlaran/alscpd/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// recorder is an Observer keeping every event.
type recorder struct {
	starts  []cpd.Mode
	iters   []cpd.Iteration
	changes [][2]int
}

func (r *recorder) OnStart(m cpd.Mode, _ int)    { r.starts = append(r.starts, m) }
func (r *recorder) OnIteration(it cpd.Iteration) { r.iters = append(r.iters, it) }

func (r *recorder) OnRankChange(oldRank, newRank int) {
	r.changes = append(r.changes, [2]int{oldRank, newRank})
}

func TestNew_InitialHistory(t *testing.T) {
	v := rank1Cube(t)
	d, err := cpd.New(v, 3, cpd.WithSeed(seedDet))
	require.NoError(t, err)

	require.Len(t, d.History(), 1)
	e, err := cpd.Evaluate(v, d.State(), cpd.DefaultRegularization, cpd.DefaultUnitScale)
	require.NoError(t, err)
	require.Equal(t, e.Total, d.Error())

	_, err = cpd.New(nil, 3)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
	_, err = cpd.New(v, 0)
	require.ErrorIs(t, err, cpd.ErrInvalidRank)
}

func TestRun1D_RankOneScenario(t *testing.T) {
	v := rank1Cube(t)
	d, err := cpd.New(v, 1, cpd.WithSeed(seedDet))
	require.NoError(t, err)

	res, err := d.Run1D(context.Background(), 50, 1e-3)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Equal(t, cpd.ALS1D, res.Mode)
	require.LessOrEqual(t, res.Error, 1e-3)
	require.Len(t, d.History(), res.Iterations+1)

	recon, err := d.State().Reconstruct()
	require.NoError(t, err)
	require.Less(t, relErr(recon.Data(), v.Data()), 1e-3)
}

func TestRun1D_RoundTripTightRegularization(t *testing.T) {
	v := outer(t, []float64{0.3, 1.2, 2.5}, []float64{1, 4, 2, 3, 5}, []float64{2, 2.5})
	d, err := cpd.New(v, 1, cpd.WithSeed(seedDet), cpd.WithRegularization(1e-14))
	require.NoError(t, err)

	res, err := d.Run1D(context.Background(), 100, 1e-6)
	require.NoError(t, err)
	require.Less(t, res.Error, 1e-6)
}

func TestRun1D_UnitVectorScenario(t *testing.T) {
	v1 := []float64{0.5, 0.5, 0.5, 0.5}
	v2 := []float64{0.1, 0.3, 0.5, 0.7}
	v3 := []float64{0.2, 0.4, 0.4, 0.8}
	floats.Scale(1/floats.Norm(v2, 2), v2)
	v := outer(t, v1, v2, v3)

	d, err := cpd.New(v, 1, cpd.WithSeed(seedDet))
	require.NoError(t, err)
	res, err := d.Run1D(context.Background(), 50, 1e-3)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Less(t, res.Error, 1e-3)

	recon, err := d.State().Reconstruct()
	require.NoError(t, err)
	require.Less(t, relErr(recon.Data(), v.Data()), 1e-3)
}

func TestRun1D_RoundTripFromExactFactors(t *testing.T) {
	// two known terms on a 4×3×5 grid, padded with a zero-weight third row
	a := [][]float64{{1, 2, 0, 1}, {0, 1, 1, -1}, {0.5, 0.5, 0.5, 0.5}}
	b := [][]float64{{1, 0, 2}, {1, 1, 0}, {0, 1, 1}}
	c := [][]float64{{2, 1, 0, 1, 1}, {0, 1, 3, 1, 0}, {1, 0, 0, 0, 1}}
	scale := []float64{3, 1.5}

	shape := []int{4, 3, 5}
	v, err := tensor.New(shape, nil)
	require.NoError(t, err)
	for m, w := range scale {
		term := outer(t, a[m], b[m], c[m])
		floats.AddScaled(v.Data(), w, term.Data())
	}

	factors := []*mat.Dense{
		mat.NewDense(3, 4, nil),
		mat.NewDense(3, 3, nil),
		mat.NewDense(3, 5, nil),
	}
	weights := make([]float64, 3)
	for m := 0; m < 3; m++ {
		w := 1.0
		for k, rows := range [][][]float64{a, b, c} {
			row := append([]float64(nil), rows[m]...)
			n := floats.Norm(row, 2)
			floats.Scale(1/n, row)
			factors[k].SetRow(m, row)
			w *= n
		}
		if m < len(scale) {
			weights[m] = scale[m] * w
		}
	}
	st, err := cpd.NewStateFrom(weights, factors)
	require.NoError(t, err)

	// With the default ε the penalty √(ε·Σc²/|V|) alone stays above 1e-6.
	loose, err := cpd.Evaluate(v, st, cpd.DefaultRegularization, 1)
	require.NoError(t, err)
	require.Greater(t, loose.Right, 1e-6)

	d, err := cpd.NewFromState(v, st, cpd.WithRegularization(1e-14))
	require.NoError(t, err)
	res, err := d.Run1D(context.Background(), 5, 1e-6)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Less(t, res.Error, 1e-6)
	require.LessOrEqual(t, res.Iterations, 5)
	require.Equal(t, 3, d.Rank())

	_, err = cpd.NewFromState(v, nil)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
	other := randomState(t, []int{4, 3}, 3)
	_, err = cpd.NewFromState(v, other)
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
}

func TestRun1D_HistoryNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	data := make([]float64, 4*5*3)
	for i := range data {
		data[i] = rng.Float64()
	}
	v, err := tensor.New([]int{4, 5, 3}, data)
	require.NoError(t, err)

	d, err := cpd.New(v, 3, cpd.WithSeed(seedDet))
	require.NoError(t, err)
	_, err = d.Run1D(context.Background(), 25, 0)
	require.NoError(t, err)

	h := d.History()
	require.Len(t, h, 26)
	for i := 1; i < len(h); i++ {
		require.LessOrEqual(t, h[i], h[i-1]+1e-12, "iteration %d", i)
	}
}

func TestRun_ObserverAndGrowth(t *testing.T) {
	v := rank1Cube(t)
	rec := &recorder{}
	d, err := cpd.New(v, 1, cpd.WithSeed(seedDet), cpd.WithRankGrowth(2), cpd.WithObserver(rec))
	require.NoError(t, err)

	res, err := d.Run1D(context.Background(), 4, 0)
	require.NoError(t, err)
	require.Equal(t, []cpd.Mode{cpd.ALS1D}, rec.starts)
	require.Len(t, rec.iters, res.Iterations)
	for i, it := range rec.iters {
		assert.Equal(t, i+1, it.Index)
		assert.Equal(t, d.History()[i+1], it.ErrorTotal)
	}

	require.NotEmpty(t, rec.changes)
	require.Equal(t, [2]int{1, 3}, rec.changes[0])
	require.Greater(t, d.Rank(), 1)
	requireUnitRows(t, d.State())
}

func TestRun2D(t *testing.T) {
	v := rank1Cube(t)
	for _, sched := range []cpd.PairSchedule{cpd.AlternatingPairs, cpd.AllPairs} {
		d, err := cpd.New(v, 1, cpd.WithSeed(seedDet), cpd.WithPairSchedule(sched))
		require.NoError(t, err)
		res, err := d.Run2D(context.Background(), 30, 1e-3)
		require.NoError(t, err)
		require.True(t, res.Converged, "schedule %d", sched)
		requireUnitRows(t, d.State())
		requireSigmasFresh(t, d.State())
	}

	line, err := tensor.New([]int{5}, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	d, err := cpd.New(line, 1)
	require.NoError(t, err)
	_, err = d.Run2D(context.Background(), 3, 0)
	require.ErrorIs(t, err, cpd.ErrNoPairs)
}

func TestRun_ContextCanceled(t *testing.T) {
	d, err := cpd.New(rank1Cube(t), 2)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Run1D(ctx, 10, 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, res.Iterations)
	require.Len(t, d.History(), 1)
}

func TestAssess(t *testing.T) {
	exact := cpd.GatherOptions()
	grow := cpd.GatherOptions(cpd.WithRankGrowth(5))
	trunc := cpd.GatherOptions(cpd.WithStrategy(cpd.TruncatedB), cpd.WithRankGrowth(5))

	_, err := cpd.Assess(1, 2.5, 4, cpd.ALS1D, exact)
	var de *cpd.DivergenceError
	require.True(t, errors.As(err, &de))
	require.ErrorIs(t, err, cpd.ErrDivergence)
	assert.Equal(t, 4, de.Iteration)
	assert.Equal(t, 1.0, de.Previous)
	assert.Equal(t, 2.5, de.Current)

	_, err = cpd.Assess(1, 2.5, 4, cpd.ALS2D, exact)
	require.ErrorIs(t, err, cpd.ErrDivergence)

	// the guard is not applied to truncated or sampled runs
	g, err := cpd.Assess(1, 2.5, 4, cpd.ALS2D, trunc)
	require.NoError(t, err)
	require.False(t, g)
	for _, m := range []cpd.Mode{cpd.MC1D, cpd.MC2D} {
		g, err = cpd.Assess(1, 2.5, 4, m, exact)
		require.NoError(t, err, m.String())
		require.False(t, g)
	}

	g, err = cpd.Assess(1, 1.5, 1, cpd.ALS1D, exact)
	require.NoError(t, err)
	require.False(t, g, "growth disabled")

	g, err = cpd.Assess(1, 0.995, 1, cpd.ALS1D, grow)
	require.NoError(t, err)
	require.True(t, g)

	g, err = cpd.Assess(1, 0.5, 1, cpd.ALS1D, grow)
	require.NoError(t, err)
	require.False(t, g)

	g, err = cpd.Assess(1, 0.995, 1, cpd.MC1D, grow)
	require.NoError(t, err)
	require.False(t, g, "no growth in Monte Carlo runs")
}

func TestScheduledPairs(t *testing.T) {
	three := sampling.Pairs(3)
	assert.Equal(t, []int{0, 2}, cpd.ScheduledPairs(three, cpd.AlternatingPairs, 0))
	assert.Equal(t, []int{1}, cpd.ScheduledPairs(three, cpd.AlternatingPairs, 1))
	assert.Equal(t, []int{0, 1, 2}, cpd.ScheduledPairs(three, cpd.AllPairs, 1))

	two := sampling.Pairs(2)
	assert.Equal(t, []int{0}, cpd.ScheduledPairs(two, cpd.AlternatingPairs, 1))
}

func TestDecomposer_ResetCloneSnapshot(t *testing.T) {
	v := rank1Cube(t)
	d, err := cpd.New(v, 2, cpd.WithSeed(seedDet))
	require.NoError(t, err)
	initial := d.Snapshot()

	c := d.Clone()
	_, err = d.Run1D(context.Background(), 4, 0)
	require.NoError(t, err)
	_, err = c.Run1D(context.Background(), 4, 0)
	require.NoError(t, err)
	require.Equal(t, d.History(), c.History())

	snap := d.Snapshot()
	require.Equal(t, 4, snap.Iterations)
	require.Len(t, snap.History, 5)
	snap.Weights[0] = 1e9
	require.NotEqual(t, 1e9, d.State().Weights()[0])

	d.Reset()
	reset := d.Snapshot()
	require.Equal(t, initial.Weights, reset.Weights)
	require.Equal(t, initial.History, reset.History)
	require.Equal(t, 0, reset.Iterations)
	for k := range initial.Factors {
		require.True(t, floats.Equal(initial.Factors[k].RawMatrix().Data, reset.Factors[k].RawMatrix().Data))
	}
	require.Len(t, c.History(), 5, "clone is independent")
}

func TestStorageRatio(t *testing.T) {
	d, err := cpd.New(rank1Cube(t), 2)
	require.NoError(t, err)
	require.InDelta(t, 37.5, d.StorageRatio(), 1e-12)
}

// sampledCube returns the rank-one cube, a Set with n uniform samples and both
// cut kinds built from the array itself.
func sampledCube(t *testing.T, n int) (*tensor.Dense, *sampling.Set) {
	t.Helper()
	v := rank1Cube(t)
	grid := sampling.Grid{
		sampling.Linspace(4, 0, 3),
		sampling.Linspace(4, 0, 3),
		sampling.Linspace(4, 0, 3),
	}
	idx, err := sampling.Uniform(grid, n, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	set, err := sampling.NewSet(grid, idx)
	require.NoError(t, err)
	pot, err := sampling.ArrayPotential(v, grid)
	require.NoError(t, err)
	require.NoError(t, set.Build1D(context.Background(), pot, 0))
	require.NoError(t, set.Build2D(context.Background(), pot, 0))
	return v, set
}

func TestRunMC1D_BestOfRun(t *testing.T) {
	v, set := sampledCube(t, 40)
	rec := &recorder{}
	d, err := cpd.New(v, 2, cpd.WithSeed(seedDet), cpd.WithSampling(set), cpd.WithObserver(rec))
	require.NoError(t, err)
	start := d.Error()

	res, err := d.RunMC1D(context.Background(), 8, 0)
	require.NoError(t, err)
	require.Equal(t, cpd.MC1D, res.Mode)

	best := start
	for _, it := range rec.iters {
		if it.ErrorTotal < best {
			best = it.ErrorTotal
		}
	}
	require.Equal(t, best, res.Error)
	require.Equal(t, best, d.Error())
	require.Less(t, res.Error, start)

	e, err := cpd.Evaluate(v, d.State(), cpd.DefaultRegularization, cpd.DefaultUnitScale)
	require.NoError(t, err)
	require.InDelta(t, best, e.Total, 1e-12, "restored state matches the reported error")
	requireUnitRows(t, d.State())
}

func TestRunMC2D(t *testing.T) {
	v, set := sampledCube(t, 40)
	d, err := cpd.New(v, 1, cpd.WithSeed(seedDet), cpd.WithSampling(set))
	require.NoError(t, err)
	start := d.Error()

	res, err := d.RunMC2D(context.Background(), 6, 1e-3)
	require.NoError(t, err)
	require.Equal(t, cpd.MC2D, res.Mode)
	require.LessOrEqual(t, res.Error, start)
	requireSigmasFresh(t, d.State())
}

func TestMonteCarlo_OmegaHoles(t *testing.T) {
	v, set := sampledCube(t, 10)
	mc, err := cpd.NewMonteCarlo(set, randomState(t, v.Shape(), 2))
	require.NoError(t, err)

	om, err := mc.Omega(0, 2)
	require.NoError(t, err)
	require.True(t, mat.Equal(om, mc.Rows(1)))

	cases := []struct {
		name     string
		excluded []int
		want     error
	}{
		{"three holes", []int{0, 1, 2}, cpd.ErrTooManyHoles},
		{"negative", []int{-1}, cpd.ErrAxis},
		{"out of range", []int{3}, cpd.ErrAxis},
		{"repeated", []int{1, 1}, cpd.ErrAxis},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mc.Omega(tc.excluded...)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRunMC_Errors(t *testing.T) {
	v := rank1Cube(t)
	d, err := cpd.New(v, 1)
	require.NoError(t, err)
	_, err = d.RunMC1D(context.Background(), 3, 0)
	require.ErrorIs(t, err, cpd.ErrSamplingRequired)

	grid := sampling.Grid{{0, 1, 2, 3}, {0, 1, 2, 3}, {0, 1, 2, 3}}
	set, err := sampling.NewSet(grid, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	d, err = cpd.New(v, 1, cpd.WithSampling(set))
	require.NoError(t, err)
	_, err = d.RunMC2D(context.Background(), 3, 0)
	require.ErrorIs(t, err, sampling.ErrNotReady)

	small := sampling.Grid{{0, 1}, {0, 1}, {0, 1}}
	other, err := sampling.NewSet(small, [][]int{{0, 1, 1}})
	require.NoError(t, err)
	_, err = cpd.NewMonteCarlo(other, d.State())
	require.ErrorIs(t, err, cpd.ErrShapeMismatch)
}
