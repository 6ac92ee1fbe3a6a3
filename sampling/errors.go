// SPDX-License-Identifier: MIT
// Package sampling: sentinel and typed errors.

package sampling

import (
	"errors"
	"fmt"
)

var (
	// ErrSampleIndex reports a malformed or out-of-range sample index.
	ErrSampleIndex = errors.New("sampling: invalid sample index")

	// ErrSetup reports a failed cut precomputation.
	ErrSetup = errors.New("sampling: cut setup failed")

	// ErrNotReady reports use of cuts that were never built.
	ErrNotReady = errors.New("sampling: cuts not ready")

	// ErrIncompatiblePotential reports a potential whose output length does not
	// match the requested coordinates.
	ErrIncompatiblePotential = errors.New("sampling: incompatible potential")

	// ErrGrid reports an empty grid or an axis without points.
	ErrGrid = errors.New("sampling: invalid grid")
)

// Operation tags.
const (
	opUniform     = "Uniform"
	opReadIndices = "ReadIndices"
	opLoadIndices = "LoadIndices"
	opValidate    = "ValidateIndices"
	opPoints      = "Points"
	opArrayPot    = "ArrayPotential"
	opBuildCuts1D = "BuildCuts1D"
	opBuildCuts2D = "BuildCuts2D"
	opNewSet      = "NewSet"
	opCuts        = "Cuts"
)

func samplingErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// SampleIndexError locates a bad entry of a sample index matrix.
type SampleIndexError struct {
	Row   int // sample (line) number, 0-based
	Col   int // axis
	Index int // offending value
	Limit int // grid extent of the axis; -1 when unknown
}

func (e *SampleIndexError) Error() string {
	return fmt.Sprintf("sampling: sample %d axis %d: index %d out of range [0,%d)", e.Row, e.Col, e.Index, e.Limit)
}

// Is reports whether target is ErrSampleIndex.
func (e *SampleIndexError) Is(target error) bool { return target == ErrSampleIndex }

// SetupError is returned when a cut work unit fails. Unit is the axis (1D) or
// the pair index (2D) of the first failure.
type SetupError struct {
	Unit int
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("sampling: cut unit %d: %v", e.Unit, e.Err)
}

// Is reports whether target is ErrSetup.
func (e *SetupError) Is(target error) bool { return target == ErrSetup }

// Unwrap returns the cause.
func (e *SetupError) Unwrap() error { return e.Err }
