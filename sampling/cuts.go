// SPDX-License-Identifier: MIT

package sampling

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// BuildCuts1D computes one cut per axis: out[k] is N_k × s with column p the
// potential along axis k through sample point p.
//
// workers bounds the pool; workers ≤ 0 means runtime.NumCPU(). Results are
// stored by axis regardless of completion order. The first failure cancels
// the remaining units and is returned as *SetupError.
func BuildCuts1D(ctx context.Context, grid Grid, points [][]float64, pot Potential, workers int) ([]*mat.Dense, error) {
	if err := checkInputs(grid, points, pot); err != nil {
		return nil, samplingErrorf(opBuildCuts1D, err)
	}
	out := make([]*mat.Dense, grid.NDim())
	err := runUnits(ctx, len(out), workers, func(ctx context.Context, k int) error {
		cut, err := buildCut(ctx, grid, points, pot, k)
		if err != nil {
			return err
		}
		out[k] = cut
		return nil
	})
	if err != nil {
		return nil, samplingErrorf(opBuildCuts1D, err)
	}
	return out, nil
}

// BuildCuts2D computes one cut per axis pair in Pairs order: out[p] is
// (N_i·N_j) × s with row a·N_j + b. Pool and failure semantics match BuildCuts1D.
func BuildCuts2D(ctx context.Context, grid Grid, points [][]float64, pot Potential, workers int) ([]*mat.Dense, error) {
	if err := checkInputs(grid, points, pot); err != nil {
		return nil, samplingErrorf(opBuildCuts2D, err)
	}
	pairs := Pairs(grid.NDim())
	if len(pairs) == 0 {
		return nil, samplingErrorf(opBuildCuts2D, fmt.Errorf("%w: need at least two axes", ErrGrid))
	}
	out := make([]*mat.Dense, len(pairs))
	err := runUnits(ctx, len(out), workers, func(ctx context.Context, u int) error {
		cut, err := buildCut(ctx, grid, points, pot, pairs[u][0], pairs[u][1])
		if err != nil {
			return err
		}
		out[u] = cut
		return nil
	})
	if err != nil {
		return nil, samplingErrorf(opBuildCuts2D, err)
	}
	return out, nil
}

// runUnits runs fn(0..n-1) on an errgroup limited to workers goroutines.
func runUnits(ctx context.Context, n, workers int, fn func(context.Context, int) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for u := 0; u < n; u++ {
		u := u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, u); err != nil {
				return &SetupError{Unit: u, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// buildCut evaluates the potential along the free axes through every point.
func buildCut(ctx context.Context, grid Grid, points [][]float64, pot Potential, free ...int) (*mat.Dense, error) {
	rows := 1
	for _, k := range free {
		rows *= len(grid[k])
	}
	cut := mat.NewDense(rows, len(points), nil)
	coords := make([][]float64, grid.NDim())
	for p, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for k := range coords {
			coords[k] = []float64{pt[k]}
		}
		for _, k := range free {
			coords[k] = append([]float64(nil), grid[k]...)
		}
		vals, err := pot(coords)
		if err != nil {
			return nil, err
		}
		if len(vals) != rows {
			return nil, fmt.Errorf("%w: got %d values, want %d", ErrIncompatiblePotential, len(vals), rows)
		}
		cut.SetCol(p, vals)
	}
	return cut, nil
}

func checkInputs(grid Grid, points [][]float64, pot Potential) error {
	if err := grid.validate(); err != nil {
		return err
	}
	if pot == nil {
		return fmt.Errorf("%w: nil potential", ErrIncompatiblePotential)
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: no samples", ErrSampleIndex)
	}
	for p, pt := range points {
		if len(pt) != grid.NDim() {
			return fmt.Errorf("%w: point %d has %d coordinates, want %d", ErrSampleIndex, p, len(pt), grid.NDim())
		}
	}
	return nil
}
