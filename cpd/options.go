// SPDX-License-Identifier: MIT

// Package cpd: functional configuration for the Decomposer. This file defines:
//   - Option (functional options over an internal options struct),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values).
//
// Design goals:
//   - Deterministic behavior: the only randomness is the seeded RNG.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Reusability: options fields are unexported; public APIs consume ...Option.

package cpd

import (
	"fmt"
	"math"

	"github.com/katalvlaran/alscpd/sampling"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultRegularization is √(machine epsilon) = 2⁻²⁶, the ridge added to
	// every Gram matrix before solving.
	DefaultRegularization = 1.0 / (1 << 26)

	// DefaultUnitScale multiplies every reported error. 1 keeps the array's units.
	DefaultUnitScale = 1.0

	// HartreeToWavenumber converts atomic energy units to cm⁻¹; pass it to
	// WithUnitScale for potentials given in Hartree.
	HartreeToWavenumber = 219474.63137

	// DefaultSubIterations caps the refinement rounds of a pair update.
	DefaultSubIterations = 20

	// DefaultTruncationTolerance bounds the discarded squared singular energy
	// of the truncated strategies.
	DefaultTruncationTolerance = 1e-4

	// DefaultDivergenceGuard is the largest tolerated increase of the total
	// error between two outer iterations.
	DefaultDivergenceGuard = 1.0

	// DefaultGrowthStep is the rank increment of automatic growth.
	DefaultGrowthStep = 5

	// DefaultGrowthTrigger: growth happens when an outer iteration improves
	// the total error by less than this.
	DefaultGrowthTrigger = 1e-2

	// DefaultStrategy is the two-axis strategy used unless WithStrategy is given.
	DefaultStrategy = Exact

	// DefaultPairSchedule is the pair schedule of two-axis runs.
	DefaultPairSchedule = AlternatingPairs
)

// Option configures a Decomposer.
type Option func(*options)

type options struct {
	eps        float64
	unitScale  float64
	seed       int64
	strategy   Strategy
	growth     bool
	growthStep int
	subIter    int
	truncTol   float64
	guard      float64
	observer   Observer
	schedule   PairSchedule
	sampling   *sampling.Set
}

func defaultOptions() options {
	return options{
		eps:        DefaultRegularization,
		unitScale:  DefaultUnitScale,
		strategy:   DefaultStrategy,
		growthStep: DefaultGrowthStep,
		subIter:    DefaultSubIterations,
		truncTol:   DefaultTruncationTolerance,
		guard:      DefaultDivergenceGuard,
		observer:   NopObserver{},
		schedule:   DefaultPairSchedule,
	}
}

func gatherOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) pairConfig() pairConfig {
	return pairConfig{
		strategy:      o.strategy,
		eps:           o.eps,
		subIterations: o.subIter,
		tolerance:     o.truncTol,
		unitScale:     o.unitScale,
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// WithRegularization sets ε. Panics if eps is negative or not finite.
func WithRegularization(eps float64) Option {
	if !finite(eps) || eps < 0 {
		panic(fmt.Sprintf("cpd: WithRegularization(%v): must be finite and ≥ 0", eps))
	}
	return func(o *options) { o.eps = eps }
}

// WithUnitScale sets the factor applied to reported errors. Panics if s ≤ 0.
func WithUnitScale(s float64) Option {
	if !finite(s) || s <= 0 {
		panic(fmt.Sprintf("cpd: WithUnitScale(%v): must be finite and > 0", s))
	}
	return func(o *options) { o.unitScale = s }
}

// WithSeed sets the RNG seed for factor initialization and growth (0 ⇒ fixed default).
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithStrategy selects the two-axis refinement strategy.
func WithStrategy(s Strategy) Option {
	if !s.valid() {
		panic(fmt.Sprintf("cpd: WithStrategy(%d): unknown strategy", int(s)))
	}
	return func(o *options) { o.strategy = s }
}

// WithRankGrowth enables automatic rank growth by step on stagnation.
// Panics if step < 1.
func WithRankGrowth(step int) Option {
	if step < 1 {
		panic(fmt.Sprintf("cpd: WithRankGrowth(%d): step must be ≥ 1", step))
	}
	return func(o *options) {
		o.growth = true
		o.growthStep = step
	}
}

// WithSubIterations caps the refinement rounds. 0 disables refinement.
func WithSubIterations(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("cpd: WithSubIterations(%d): must be ≥ 0", n))
	}
	return func(o *options) { o.subIter = n }
}

// WithTruncationTolerance sets the discarded-energy bound of the truncated strategies.
func WithTruncationTolerance(tol float64) Option {
	if !finite(tol) || tol < 0 {
		panic(fmt.Sprintf("cpd: WithTruncationTolerance(%v): must be finite and ≥ 0", tol))
	}
	return func(o *options) { o.truncTol = tol }
}

// WithDivergenceGuard sets the tolerated error increase. Panics if g < 0.
func WithDivergenceGuard(g float64) Option {
	if math.IsNaN(g) || g < 0 {
		panic(fmt.Sprintf("cpd: WithDivergenceGuard(%v): must be ≥ 0", g))
	}
	return func(o *options) { o.guard = g }
}

// WithObserver installs an observer. nil restores the no-op observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			obs = NopObserver{}
		}
		o.observer = obs
	}
}

// WithPairSchedule selects the two-axis pair schedule.
func WithPairSchedule(p PairSchedule) Option {
	if !p.valid() {
		panic(fmt.Sprintf("cpd: WithPairSchedule(%d): unknown schedule", int(p)))
	}
	return func(o *options) { o.schedule = p }
}

// WithSampling attaches the sampling set used by the Monte Carlo runs.
func WithSampling(set *sampling.Set) Option {
	return func(o *options) { o.sampling = set }
}
