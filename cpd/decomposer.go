// SPDX-License-Identifier: MIT

package cpd

import (
	"context"
	"fmt"

	"github.com/katalvlaran/alscpd/sampling"
	"github.com/katalvlaran/alscpd/tensor"
)

// Decomposer owns a target array, the factorization State and the error
// history, and drives the ALS run loops over them.
//
// Runs may be chained (e.g. Run1D then Run2D then RunMC1D); each continues from
// the current state and appends to the same history. A Decomposer is not safe
// for concurrent use; Clone gives an independent copy.
type Decomposer struct {
	v       *tensor.Dense
	opts    options
	state   *State
	initial *State
	history []float64
	iter    int

	// set by runBest for the duration of a Monte Carlo run
	onIteration func(total float64)
}

// New creates a Decomposer with random normalized factors of the given rank
// and zero weights, and records the initial error as history[0].
//
// Errors:
//   - *InvalidRankError when rank < 1.
//   - ErrShapeMismatch when v is nil.
func New(v *tensor.Dense, rank int, opts ...Option) (*Decomposer, error) {
	if v == nil {
		return nil, cpdErrorf(opNew, ErrShapeMismatch)
	}
	o := gatherOptions(opts...)
	st, err := NewState(v.Shape(), rank, newRNG(o.seed))
	if err != nil {
		return nil, err
	}
	return newDecomposer(v, st, o)
}

// NewFromState creates a Decomposer starting from a copy of st instead of a
// random guess.
func NewFromState(v *tensor.Dense, st *State, opts ...Option) (*Decomposer, error) {
	if st == nil || !st.fits(v) {
		return nil, cpdErrorf(opNew, ErrShapeMismatch)
	}
	return newDecomposer(v, st.Clone(), gatherOptions(opts...))
}

func newDecomposer(v *tensor.Dense, st *State, o options) (*Decomposer, error) {
	e, err := Evaluate(v, st, o.eps, o.unitScale)
	if err != nil {
		return nil, err
	}
	return &Decomposer{
		v:       v,
		opts:    o,
		state:   st,
		initial: st.Clone(),
		history: []float64{e.Total},
	}, nil
}

// Apply changes options for subsequent runs. WithSeed only affects later
// rank growth; the current factors are kept.
func (d *Decomposer) Apply(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(&d.opts)
		}
	}
}

// Rank returns the current rank.
func (d *Decomposer) Rank() int { return d.state.Rank() }

// Error returns the last recorded total error.
func (d *Decomposer) Error() float64 { return d.history[len(d.history)-1] }

// History returns a copy of the error history.
func (d *Decomposer) History() []float64 { return append([]float64(nil), d.history...) }

// State returns a deep copy of the current factorization.
func (d *Decomposer) State() *State { return d.state.Clone() }

// Snapshot returns a deep copy of weights, factors and history.
func (d *Decomposer) Snapshot() Snapshot {
	return Snapshot{
		Weights:    d.state.Weights(),
		Factors:    d.state.Factors(),
		Shape:      d.state.Shape(),
		Rank:       d.state.Rank(),
		History:    d.History(),
		Iterations: d.iter,
	}
}

// Reset restores the initial random guess (initial rank, zero weights) and
// restarts the history from its first entry.
func (d *Decomposer) Reset() {
	d.state = d.initial.Clone()
	d.history = d.history[:1:1]
	d.iter = 0
}

// Clone returns an independent deep copy sharing only the read-only target
// array, the sampling set and the observer.
func (d *Decomposer) Clone() *Decomposer {
	return &Decomposer{
		v:       d.v,
		opts:    d.opts,
		state:   d.state.Clone(),
		initial: d.initial.Clone(),
		history: d.History(),
		iter:    d.iter,
	}
}

// StorageRatio returns, in percent, the storage of the expansion (r·ΣN_k)
// relative to the full grid (ΠN_k).
func (d *Decomposer) StorageRatio() float64 {
	var exp float64
	full := 1.0
	for _, n := range d.state.Shape() {
		exp += float64(n * d.state.Rank())
		full *= float64(n)
	}
	return exp / full * 100
}

// ChangeRank grows the rank to newRank (see State.ChangeRank) and notifies the observer.
func (d *Decomposer) ChangeRank(newRank int) error {
	old := d.state.Rank()
	if err := d.state.ChangeRank(newRank, growthRNG(d.opts.seed, newRank)); err != nil {
		return err
	}
	if newRank != old {
		d.opts.observer.OnRankChange(old, newRank)
	}
	return nil
}

// Run1D sweeps every axis with Update1D per outer iteration while the total
// error is above threshold and fewer than maxIter iterations ran.
func (d *Decomposer) Run1D(ctx context.Context, maxIter int, threshold float64) (Result, error) {
	return d.run(ctx, ALS1D, maxIter, threshold, func(int) error {
		for k := 0; k < d.state.NDim(); k++ {
			if err := Update1D(d.v, d.state, k, d.opts.eps); err != nil {
				return err
			}
		}
		return nil
	})
}

// Run2D updates axis pairs per outer iteration following the pair schedule.
//
// Errors:
//   - ErrNoPairs when the array has fewer than two axes.
func (d *Decomposer) Run2D(ctx context.Context, maxIter int, threshold float64) (Result, error) {
	pairs := sampling.Pairs(d.state.NDim())
	if len(pairs) == 0 {
		return d.result(ALS2D, 0, threshold), cpdErrorf(opRun, ErrNoPairs)
	}
	cfg := d.opts.pairConfig()
	return d.run(ctx, ALS2D, maxIter, threshold, func(it int) error {
		for _, p := range scheduledPairs(pairs, d.opts.schedule, it) {
			if err := updatePair(d.v, d.state, pairs[p][0], pairs[p][1], cfg); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunMC1D runs the Monte Carlo one-axis loop. The sampling set must hold 1D
// cuts. The best state seen is restored at the end and reported.
func (d *Decomposer) RunMC1D(ctx context.Context, maxIter int, threshold float64) (Result, error) {
	mc, err := d.monteCarlo(func(s *sampling.Set) error { _, err := s.Cuts1D(); return err })
	if err != nil {
		return d.result(MC1D, 0, threshold), err
	}
	return d.runBest(ctx, MC1D, maxIter, threshold, func(int) error {
		for k := 0; k < d.state.NDim(); k++ {
			if err := mc.Update1D(d.state, k, d.opts.eps); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunMC2D runs the Monte Carlo pair loop. The sampling set must hold 2D cuts.
// The best state seen is restored at the end and reported.
func (d *Decomposer) RunMC2D(ctx context.Context, maxIter int, threshold float64) (Result, error) {
	pairs := sampling.Pairs(d.state.NDim())
	if len(pairs) == 0 {
		return d.result(MC2D, 0, threshold), cpdErrorf(opRun, ErrNoPairs)
	}
	mc, err := d.monteCarlo(func(s *sampling.Set) error { _, err := s.Cuts2D(); return err })
	if err != nil {
		return d.result(MC2D, 0, threshold), err
	}
	cfg := d.opts.pairConfig()
	return d.runBest(ctx, MC2D, maxIter, threshold, func(it int) error {
		for _, p := range scheduledPairs(pairs, d.opts.schedule, it) {
			if err := mc.updatePair(d.state, pairs[p][0], pairs[p][1], cfg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Decomposer) monteCarlo(ready func(*sampling.Set) error) (*MonteCarlo, error) {
	if d.opts.sampling == nil {
		return nil, cpdErrorf(opRun, ErrSamplingRequired)
	}
	if err := ready(d.opts.sampling); err != nil {
		return nil, cpdErrorf(opRun, err)
	}
	return NewMonteCarlo(d.opts.sampling, d.state)
}

// scheduledPairs returns the indices (into the lexicographic pair list) to
// visit on run-local iteration it.
func scheduledPairs(pairs [][2]int, schedule PairSchedule, it int) []int {
	var all, even, odd []int
	for p := range pairs {
		all = append(all, p)
		if p%2 == 0 {
			even = append(even, p)
		} else {
			odd = append(odd, p)
		}
	}
	if schedule == AllPairs {
		return all
	}
	if it%2 == 1 && len(odd) > 0 {
		return odd
	}
	return even
}

// runBest wraps run with best-of-run tracking: a shadow copy of the lowest
// error state is kept and restored when the run ends, for any reason.
func (d *Decomposer) runBest(ctx context.Context, mode Mode, maxIter int, threshold float64, sweep func(int) error) (Result, error) {
	best := d.state.Clone()
	bestErr := d.Error()

	d.onIteration = func(total float64) {
		if total < bestErr {
			best = d.state.Clone()
			bestErr = total
		}
	}
	defer func() { d.onIteration = nil }()

	res, err := d.run(ctx, mode, maxIter, threshold, sweep)

	d.state = best
	d.history[len(d.history)-1] = bestErr
	res.Error = bestErr
	res.Converged = bestErr <= threshold
	res.Rank = d.state.Rank()

	return res, err
}

// run is the shared outer loop.
//
// Per iteration: check ctx, sweep, evaluate, append to history, notify, then
// compare with the previous total:
//   - prev − total < −guard  ⇒ *DivergenceError (exact full-grid modes only);
//   - prev − total < trigger ⇒ grow the rank (growth enabled, full-grid modes).
func (d *Decomposer) run(ctx context.Context, mode Mode, maxIter int, threshold float64, sweep func(int) error) (Result, error) {
	d.opts.observer.OnStart(mode, d.state.Rank())

	total := d.Error()
	var it int
	for it = 0; total > threshold && it < maxIter; it++ {
		if err := ctx.Err(); err != nil {
			return d.result(mode, it, threshold), err
		}
		if err := sweep(it); err != nil {
			return d.result(mode, it, threshold), err
		}
		e, err := Evaluate(d.v, d.state, d.opts.eps, d.opts.unitScale)
		if err != nil {
			return d.result(mode, it, threshold), err
		}

		prev := total
		total = e.Total
		d.history = append(d.history, total)
		d.iter++
		d.opts.observer.OnIteration(Iteration{
			Index:      d.iter,
			ErrorLeft:  e.Left,
			ErrorRight: e.Right,
			ErrorTotal: e.Total,
			Rank:       d.state.Rank(),
			Mode:       mode,
		})
		if d.onIteration != nil {
			d.onIteration(total)
		}

		grow, err := assess(prev, total, d.iter, mode, d.opts)
		if err != nil {
			return d.result(mode, it+1, threshold), err
		}
		if grow {
			if err = d.ChangeRank(d.state.Rank() + d.opts.growthStep); err != nil {
				return d.result(mode, it+1, threshold), err
			}
		}
	}

	return d.result(mode, it, threshold), nil
}

// assess applies the divergence guard and the growth trigger to one step.
func assess(prev, total float64, iteration int, mode Mode, o options) (bool, error) {
	diff := prev - total
	if diff < -o.guard {
		if mode == ALS1D || (mode == ALS2D && !o.strategy.truncated()) {
			return false, &DivergenceError{Iteration: iteration, Previous: prev, Current: total}
		}
		return false, nil
	}
	if diff < DefaultGrowthTrigger && o.growth && !mode.MonteCarlo() {
		return true, nil
	}
	return false, nil
}

func (d *Decomposer) result(mode Mode, iterations int, threshold float64) Result {
	e := d.Error()
	return Result{
		Mode:       mode,
		Error:      e,
		Iterations: iterations,
		Converged:  e <= threshold,
		Rank:       d.state.Rank(),
	}
}

// String implements fmt.Stringer.
func (d *Decomposer) String() string {
	return fmt.Sprintf("cpd.Decomposer{shape: %v, rank: %d, iterations: %d, error: %g}",
		d.state.Shape(), d.state.Rank(), d.iter, d.Error())
}
