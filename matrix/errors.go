// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels return these sentinels (optionally wrapped with an operation tag)
// and callers match them via errors.Is. No kernel panics on user input.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMatrix indicates that a nil matrix argument was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrDimensionMismatch indicates incompatible operand shapes.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNaNInf signals a NaN or ±Inf where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrSingular is returned when a regularized system cannot be factorized
	// or its solution is too ill-conditioned to be trusted.
	ErrSingular = errors.New("matrix: singular or ill-conditioned matrix")

	// ErrSVDFailed indicates that the SVD did not converge.
	ErrSVDFailed = errors.New("matrix: singular value decomposition failed")

	// ErrOutOfRange indicates an axis or row index outside the valid range.
	ErrOutOfRange = errors.New("matrix: index out of range")
)

// Operation tags used by matrixErrorf.
const (
	opGram       = "Gram"
	opHadamard   = "Hadamard"
	opSolve      = "SolveRegularized"
	opNormalize  = "NormalizeRows"
	opDominant   = "DominantTriplet"
	opThinSVD    = "ThinSVD"
	opAllClose   = "AllClose"
	opValidating = "Validate"
)

// matrixErrorf wraps err with an operation tag, preserving it for errors.Is.
// Call only with a non-nil err.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
