// SPDX-License-Identifier: MIT

// Package config reads the YAML job description of the alscpd command: the
// target array, the starting rank and decomposer options, an optional
// sampling section for Monte Carlo jobs, and the ordered list of jobs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/sampling"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid job file")

// Config is the root of a job file.
type Config struct {
	Target          Target    `yaml:"target"`
	Grid            []Axis    `yaml:"grid,omitempty"`
	Rank            int       `yaml:"rank"`
	Seed            int64     `yaml:"seed"`
	Regularization  float64   `yaml:"regularization"`
	UnitScale       float64   `yaml:"unit_scale"`
	GrowthStep      int       `yaml:"growth_step"` // 0 disables automatic growth
	DivergenceGuard float64   `yaml:"divergence_guard"`
	SubIterations   int       `yaml:"sub_iterations"`
	Table           string    `yaml:"table,omitempty"` // iteration table output path
	Sampling        *Sampling `yaml:"sampling,omitempty"`
	Jobs            []Job     `yaml:"jobs"`
}

// Target locates the flat little-endian float64 array.
type Target struct {
	Path  string `yaml:"path"`
	Shape []int  `yaml:"shape"`
}

// Axis describes one evenly spaced grid axis.
type Axis struct {
	Points int     `yaml:"points"`
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
}

// Sampling configures the Monte Carlo sample set.
type Sampling struct {
	Samples int    `yaml:"samples"`           // uniform draws when Indices is empty
	Indices string `yaml:"indices,omitempty"` // presampled index file
	Workers int    `yaml:"workers"`           // ≤ 0 means one per CPU
}

// Job is one run loop invocation.
type Job struct {
	Mode      string  `yaml:"mode"` // als1d | als2d | mc1d | mc2d
	MaxIter   int     `yaml:"max_iter"`
	Threshold float64 `yaml:"threshold"`
	Strategy  string  `yaml:"strategy,omitempty"` // exact | truncated-y | truncated-b
	Schedule  string  `yaml:"schedule,omitempty"` // alternating | all
	Reset     bool    `yaml:"reset,omitempty"`    // restore the initial guess before the job
}

// Default returns a Config with every numeric knob at its library default and
// no target or jobs.
func Default() Config {
	return Config{
		Rank:            1,
		Regularization:  cpd.DefaultRegularization,
		UnitScale:       cpd.DefaultUnitScale,
		DivergenceGuard: cpd.DefaultDivergenceGuard,
		SubIterations:   cpd.DefaultSubIterations,
	}
}

// Load reads and validates the job file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a job file over Default and validates it. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every problem found, joined, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Target.Path == "" {
		bad("target.path is required")
	}
	if len(c.Target.Shape) == 0 {
		bad("target.shape is required")
	}
	for k, n := range c.Target.Shape {
		if n <= 0 {
			bad("target.shape[%d] = %d must be > 0", k, n)
		}
	}
	if len(c.Grid) > 0 && len(c.Grid) != len(c.Target.Shape) {
		bad("grid has %d axes, target has %d", len(c.Grid), len(c.Target.Shape))
	}
	for k, a := range c.Grid {
		if k < len(c.Target.Shape) && a.Points != c.Target.Shape[k] {
			bad("grid[%d].points = %d, target.shape[%d] = %d", k, a.Points, k, c.Target.Shape[k])
		}
	}
	if c.Rank < 1 {
		bad("rank = %d must be ≥ 1", c.Rank)
	}
	if c.Regularization < 0 {
		bad("regularization must be ≥ 0")
	}
	if c.UnitScale <= 0 {
		bad("unit_scale must be > 0")
	}
	if c.GrowthStep < 0 {
		bad("growth_step must be ≥ 0")
	}
	if c.DivergenceGuard < 0 {
		bad("divergence_guard must be ≥ 0")
	}
	if c.SubIterations < 0 {
		bad("sub_iterations must be ≥ 0")
	}
	if c.Sampling != nil && c.Sampling.Indices == "" && c.Sampling.Samples < 1 {
		bad("sampling needs samples ≥ 1 or an indices file")
	}

	if len(c.Jobs) == 0 {
		bad("at least one job is required")
	}
	for i, j := range c.Jobs {
		mode, err := ParseMode(j.Mode)
		if err != nil {
			bad("jobs[%d]: %v", i, err)
			continue
		}
		if j.MaxIter < 1 {
			bad("jobs[%d].max_iter must be ≥ 1", i)
		}
		if j.Threshold < 0 {
			bad("jobs[%d].threshold must be ≥ 0", i)
		}
		if _, err = ParseStrategy(j.Strategy); err != nil {
			bad("jobs[%d]: %v", i, err)
		}
		if _, err = ParseSchedule(j.Schedule); err != nil {
			bad("jobs[%d]: %v", i, err)
		}
		if mode.MonteCarlo() {
			if c.Sampling == nil {
				bad("jobs[%d]: %s needs a sampling section", i, mode)
			}
			if len(c.Grid) == 0 {
				bad("jobs[%d]: %s needs a grid", i, mode)
			}
		}
		if (mode == cpd.ALS2D || mode == cpd.MC2D) && len(c.Target.Shape) < 2 {
			bad("jobs[%d]: %s needs at least two axes", i, mode)
		}
	}

	return errors.Join(errs...)
}

// Grids expands the grid section into coordinate axes.
func (c Config) Grids() sampling.Grid {
	g := make(sampling.Grid, len(c.Grid))
	for k, a := range c.Grid {
		g[k] = sampling.Linspace(a.Points, a.Start, a.End)
	}
	return g
}

// Options returns the decomposer options shared by every job. Per-job
// strategy and schedule come from Job.Options.
func (c Config) Options() []cpd.Option {
	opts := []cpd.Option{
		cpd.WithSeed(c.Seed),
		cpd.WithRegularization(c.Regularization),
		cpd.WithUnitScale(c.UnitScale),
		cpd.WithDivergenceGuard(c.DivergenceGuard),
		cpd.WithSubIterations(c.SubIterations),
	}
	if c.GrowthStep > 0 {
		opts = append(opts, cpd.WithRankGrowth(c.GrowthStep))
	}
	return opts
}

// NeedsSampling reports whether any job is a Monte Carlo run, and which cut
// kinds are needed.
func (c Config) NeedsSampling() (cuts1D, cuts2D bool) {
	for _, j := range c.Jobs {
		m, err := ParseMode(j.Mode)
		if err != nil {
			continue
		}
		cuts1D = cuts1D || m == cpd.MC1D
		cuts2D = cuts2D || m == cpd.MC2D
	}
	return cuts1D, cuts2D
}

// Options returns the strategy and schedule options of the job.
func (j Job) Options() ([]cpd.Option, error) {
	st, err := ParseStrategy(j.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	sc, err := ParseSchedule(j.Schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return []cpd.Option{cpd.WithStrategy(st), cpd.WithPairSchedule(sc)}, nil
}
