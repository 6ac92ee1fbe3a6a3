// SPDX-License-Identifier: MIT

package cpd

import "gonum.org/v1/gonum/mat"

// Strategy selects how the two-axis refinement builds its right-hand sides.
// It is chosen once per run.
//
//   - Exact: contract the joint solution x_ij against the other factor.
//   - TruncatedY: build Y from the truncated per-component SVD of x_ij.
//   - TruncatedB: build the right-hand side directly from the truncated SVD,
//     without materializing Y.
//
// The truncated strategies trade accuracy for cost; the divergence guard is
// not applied while they are active.
type Strategy int

const (
	// Exact uses the materialized contraction of x_ij.
	Exact Strategy = iota

	// TruncatedY builds Y from the kept singular triplets.
	TruncatedY

	// TruncatedB builds the refinement right-hand side from the kept triplets.
	TruncatedB
)

func (s Strategy) String() string {
	switch s {
	case Exact:
		return "exact"
	case TruncatedY:
		return "truncated-y"
	case TruncatedB:
		return "truncated-b"
	default:
		return "unknown"
	}
}

// truncated reports whether s uses the SVD surrogate.
func (s Strategy) truncated() bool { return s == TruncatedY || s == TruncatedB }

func (s Strategy) valid() bool { return s >= Exact && s <= TruncatedB }

// Mode identifies which run loop produced an iteration.
type Mode int

const (
	// ALS1D updates one axis at a time on the full grid.
	ALS1D Mode = iota
	// ALS2D updates axis pairs on the full grid.
	ALS2D
	// MC1D updates one axis at a time from sampled cuts.
	MC1D
	// MC2D updates axis pairs from sampled cuts.
	MC2D
)

func (m Mode) String() string {
	switch m {
	case ALS1D:
		return "als1d"
	case ALS2D:
		return "als2d"
	case MC1D:
		return "mc1d"
	case MC2D:
		return "mc2d"
	default:
		return "unknown"
	}
}

// MonteCarlo reports whether m is a sampled mode.
func (m Mode) MonteCarlo() bool { return m == MC1D || m == MC2D }

// PairSchedule controls which axis pairs a two-axis outer iteration visits.
type PairSchedule int

const (
	// AlternatingPairs visits even-indexed pairs on even iterations and
	// odd-indexed pairs on odd ones (pairs in lexicographic order). When there
	// is no odd-indexed pair the even set is used every iteration.
	AlternatingPairs PairSchedule = iota

	// AllPairs visits every pair on every iteration.
	AllPairs
)

func (p PairSchedule) valid() bool { return p == AlternatingPairs || p == AllPairs }

// Errors is the split convergence functional.
type Errors struct {
	Left  float64 // √mean((V − recon)²)·scale
	Right float64 // √(ε·Σc²/|V|)·scale
	Total float64 // √(mean squared residual + ε·Σc²/|V|)·scale
}

// Result summarizes one run.
type Result struct {
	Mode       Mode
	Error      float64 // final (MC: best) total error
	Iterations int     // outer iterations performed by this run
	Converged  bool    // Error ≤ threshold
	Rank       int     // rank at the end of the run
}

// Snapshot is a deep copy of the caller-visible decomposition state.
type Snapshot struct {
	Weights    []float64
	Factors    []*mat.Dense // Factors[k] is r×N_k
	Shape      []int
	Rank       int
	History    []float64
	Iterations int
}
