// SPDX-License-Identifier: MIT

package sampling

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Uniform draws s independent index tuples, each axis uniform over its grid.
// Duplicates are allowed.
//
// Errors:
//   - ErrGrid for an empty grid or axis.
//   - ErrSampleIndex when s < 1.
func Uniform(grid Grid, s int, rng *rand.Rand) ([][]int, error) {
	if err := grid.validate(); err != nil {
		return nil, samplingErrorf(opUniform, err)
	}
	if s < 1 {
		return nil, samplingErrorf(opUniform, fmt.Errorf("%w: sample count %d", ErrSampleIndex, s))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	shape := grid.Shape()
	out := make([][]int, s)
	for p := range out {
		row := make([]int, len(shape))
		for k, n := range shape {
			row[k] = rng.Intn(n)
		}
		out[p] = row
	}

	return out, nil
}

// ReadIndices parses a presampled index file: the first line is a header and
// is skipped; every further non-blank line holds D whitespace-separated
// non-negative integers. D is taken from the first data line.
//
// Errors:
//   - *SampleIndexError for a negative value (Limit is -1, bounds are unknown here).
//   - ErrSampleIndex for a non-integer token or a row of a different width.
func ReadIndices(r io.Reader) ([][]int, error) {
	sc := bufio.NewScanner(r)
	var (
		out   [][]int
		width int
		line  int
	)
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if width == 0 {
			width = len(fields)
		}
		if len(fields) != width {
			return nil, samplingErrorf(opReadIndices,
				fmt.Errorf("%w: line %d has %d columns, want %d", ErrSampleIndex, line, len(fields), width))
		}
		row := make([]int, width)
		for k, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, samplingErrorf(opReadIndices, fmt.Errorf("%w: line %d: %w", ErrSampleIndex, line, err))
			}
			if v < 0 {
				return nil, samplingErrorf(opReadIndices, &SampleIndexError{Row: len(out), Col: k, Index: v, Limit: -1})
			}
			row[k] = v
		}
		out = append(out, row)
	}
	if err := sc.Err(); err != nil {
		return nil, samplingErrorf(opReadIndices, err)
	}

	return out, nil
}

// LoadIndices opens path and delegates to ReadIndices.
func LoadIndices(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, samplingErrorf(opLoadIndices, err)
	}
	defer f.Close()

	idx, err := ReadIndices(f)
	if err != nil {
		return nil, samplingErrorf(opLoadIndices, fmt.Errorf("%s: %w", path, err))
	}

	return idx, nil
}

// ValidateIndices checks that every row has one entry per axis and every
// entry lies inside its axis.
func ValidateIndices(grid Grid, idx [][]int) error {
	if err := grid.validate(); err != nil {
		return samplingErrorf(opValidate, err)
	}
	if len(idx) == 0 {
		return samplingErrorf(opValidate, fmt.Errorf("%w: no samples", ErrSampleIndex))
	}
	shape := grid.Shape()
	for p, row := range idx {
		if len(row) != len(shape) {
			return samplingErrorf(opValidate,
				fmt.Errorf("%w: sample %d has %d axes, want %d", ErrSampleIndex, p, len(row), len(shape)))
		}
		for k, v := range row {
			if v < 0 || v >= shape[k] {
				return samplingErrorf(opValidate, &SampleIndexError{Row: p, Col: k, Index: v, Limit: shape[k]})
			}
		}
	}
	return nil
}

// Points maps index tuples to physical coordinates: Points[p][k] = grid[k][idx[p][k]].
func Points(grid Grid, idx [][]int) ([][]float64, error) {
	if err := ValidateIndices(grid, idx); err != nil {
		return nil, samplingErrorf(opPoints, err)
	}
	out := make([][]float64, len(idx))
	for p, row := range idx {
		pt := make([]float64, len(row))
		for k, v := range row {
			pt[k] = grid[k][v]
		}
		out[p] = pt
	}
	return out, nil
}
