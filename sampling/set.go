// SPDX-License-Identifier: MIT

package sampling

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Phase tracks whether a kind of cut has been built.
type Phase int

const (
	// Uninitialized: the cuts were never built or the last build failed.
	Uninitialized Phase = iota
	// Ready: the cuts are built and may be read.
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "uninitialized"
}

// Set holds validated sample indices, their coordinates and the cuts built
// from them. Cuts returned by Cuts1D/Cuts2D are shared and must be treated as
// read-only. A Set is not safe for concurrent Build calls.
type Set struct {
	grid   Grid
	idx    [][]int
	points [][]float64

	cuts1D  []*mat.Dense
	cuts2D  []*mat.Dense
	phase1D Phase
	phase2D Phase
}

// NewSet validates idx against grid and returns a Set with no cuts.
func NewSet(grid Grid, idx [][]int) (*Set, error) {
	points, err := Points(grid, idx)
	if err != nil {
		return nil, samplingErrorf(opNewSet, err)
	}
	cp := make([][]int, len(idx))
	for p, row := range idx {
		cp[p] = append([]int(nil), row...)
	}
	g := make(Grid, len(grid))
	for k, axis := range grid {
		g[k] = append([]float64(nil), axis...)
	}
	return &Set{grid: g, idx: cp, points: points}, nil
}

// Grid returns the grid (shared, read-only).
func (s *Set) Grid() Grid { return s.grid }

// Shape returns the grid extents.
func (s *Set) Shape() []int { return s.grid.Shape() }

// NDim returns the number of axes.
func (s *Set) NDim() int { return s.grid.NDim() }

// Samples returns the number of samples s.
func (s *Set) Samples() int { return len(s.idx) }

// Indices returns a copy of the sample index matrix (s × D).
func (s *Set) Indices() [][]int {
	out := make([][]int, len(s.idx))
	for p, row := range s.idx {
		out[p] = append([]int(nil), row...)
	}
	return out
}

// Points returns the sample coordinates (shared, read-only).
func (s *Set) Points() [][]float64 { return s.points }

// Phase1D reports whether the 1D cuts are built.
func (s *Set) Phase1D() Phase { return s.phase1D }

// Phase2D reports whether the 2D cuts are built.
func (s *Set) Phase2D() Phase { return s.phase2D }

// Build1D computes the 1D cuts. On failure the previous 1D cuts are dropped
// and the phase is Uninitialized.
func (s *Set) Build1D(ctx context.Context, pot Potential, workers int) error {
	s.cuts1D, s.phase1D = nil, Uninitialized
	cuts, err := BuildCuts1D(ctx, s.grid, s.points, pot, workers)
	if err != nil {
		return err
	}
	s.cuts1D, s.phase1D = cuts, Ready
	return nil
}

// Build2D computes the 2D cuts. Failure semantics match Build1D.
func (s *Set) Build2D(ctx context.Context, pot Potential, workers int) error {
	s.cuts2D, s.phase2D = nil, Uninitialized
	cuts, err := BuildCuts2D(ctx, s.grid, s.points, pot, workers)
	if err != nil {
		return err
	}
	s.cuts2D, s.phase2D = cuts, Ready
	return nil
}

// Cuts1D returns the per-axis cuts or ErrNotReady.
func (s *Set) Cuts1D() ([]*mat.Dense, error) {
	if s.phase1D != Ready {
		return nil, samplingErrorf(opCuts, fmt.Errorf("%w: 1D", ErrNotReady))
	}
	return s.cuts1D, nil
}

// Cuts2D returns the per-pair cuts (Pairs order) or ErrNotReady.
func (s *Set) Cuts2D() ([]*mat.Dense, error) {
	if s.phase2D != Ready {
		return nil, samplingErrorf(opCuts, fmt.Errorf("%w: 2D", ErrNotReady))
	}
	return s.cuts2D, nil
}
