// SPDX-License-Identifier: MIT
// Package cpd: sentinel and typed errors.
//
// Sentinels are matched with errors.Is. The typed errors carry diagnostics and
// match their sentinel through Is, so callers can use either errors.Is or errors.As.

package cpd

import (
	"errors"
	"fmt"
)

var (
	// ErrNumericalInstability reports a regularized solve that failed
	// (singular or ill-conditioned S + εI). Not retried; raise ε and retry.
	ErrNumericalInstability = errors.New("cpd: numerical instability")

	// ErrDivergence reports a total error increase beyond the divergence guard.
	ErrDivergence = errors.New("cpd: error diverged")

	// ErrInvalidRank reports a rank below 1 or below the current rank.
	ErrInvalidRank = errors.New("cpd: invalid rank")

	// ErrAxis reports an axis index out of range or a repeated axis.
	ErrAxis = errors.New("cpd: invalid axis")

	// ErrTooManyHoles reports a hole overlap with more than two excluded axes.
	ErrTooManyHoles = errors.New("cpd: at most two axes may be excluded")

	// ErrShapeMismatch reports a state or sampling set that does not fit the target array.
	ErrShapeMismatch = errors.New("cpd: shape mismatch")

	// ErrNoPairs reports a two-axis run on an array with fewer than two axes.
	ErrNoPairs = errors.New("cpd: two-axis update needs at least two axes")

	// ErrStrategy reports an unknown update strategy.
	ErrStrategy = errors.New("cpd: unknown update strategy")

	// ErrSamplingRequired reports a Monte Carlo run without a sampling set.
	ErrSamplingRequired = errors.New("cpd: Monte Carlo run needs a sampling set")
)

// Operation tags.
const (
	opHoleOverlap = "HoleOverlap"
	opRefresh     = "RefreshSigma"
	opUpdate1D    = "Update1D"
	opUpdate2D    = "Update2D"
	opRefine      = "Refine"
	opMonteCarlo  = "MonteCarlo"
	opChangeRank  = "ChangeRank"
	opEvaluate    = "Evaluate"
	opNew         = "New"
	opRun         = "Run"
)

func cpdErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// unstable tags a failed solve as numerical instability, keeping the cause.
func unstable(tag string, err error) error {
	return fmt.Errorf("%s: %w: %w", tag, ErrNumericalInstability, err)
}

// DivergenceError is returned by the run loops when the total error grows by
// more than the divergence guard between two outer iterations.
type DivergenceError struct {
	Iteration int     // outer iteration (global count) that produced Current
	Previous  float64 // total error before the iteration
	Current   float64 // total error after the iteration
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("cpd: error increased in iteration %d: %g -> %g", e.Iteration, e.Previous, e.Current)
}

// Is reports whether target is ErrDivergence.
func (e *DivergenceError) Is(target error) bool { return target == ErrDivergence }

// InvalidRankError is returned when a requested rank is rejected.
// The state it was raised against is left untouched.
type InvalidRankError struct {
	Current   int
	Requested int
}

func (e *InvalidRankError) Error() string {
	return fmt.Sprintf("cpd: invalid rank %d (current %d)", e.Requested, e.Current)
}

// Is reports whether target is ErrInvalidRank.
func (e *InvalidRankError) Is(target error) bool { return target == ErrInvalidRank }
