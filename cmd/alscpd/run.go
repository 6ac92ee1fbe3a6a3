// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/katalvlaran/alscpd/config"
	"github.com/katalvlaran/alscpd/cpd"
	"github.com/katalvlaran/alscpd/sampling"
	"github.com/katalvlaran/alscpd/telemetry"
	"github.com/katalvlaran/alscpd/tensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runFlags struct {
	config      string
	metricsAddr string
	workers     int
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the jobs of a YAML job file",
		Long: `Loads the target array, builds the Monte Carlo sample set when a job
needs it, and runs the jobs in order on one decomposer. A job with reset: true
restarts from the initial random guess.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runJobs(ctx, f, log.Logger)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "Job file (YAML)")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Cut precomputation workers; overrides sampling.workers when > 0")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runJobs(ctx context.Context, f runFlags, logger zerolog.Logger) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	v, err := tensor.LoadBinary(cfg.Target.Path, cfg.Target.Shape)
	if err != nil {
		return err
	}
	logger.Info().Str("path", cfg.Target.Path).Ints("shape", v.Shape()).Msg("target loaded")

	observers := []cpd.Observer{telemetry.NewLogObserver(logger)}

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := telemetry.NewMetrics(reg)
		if err != nil {
			return err
		}
		observers = append(observers, m)
		srv := serveMetrics(f.metricsAddr, reg, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	var table *telemetry.TableObserver
	if cfg.Table != "" {
		out, err := os.Create(cfg.Table)
		if err != nil {
			return fmt.Errorf("table: %w", err)
		}
		defer out.Close()
		table = telemetry.NewTableObserver(out)
		observers = append(observers, table)
	}

	opts := append(cfg.Options(), cpd.WithObserver(cpd.Observers(observers...)))
	if one, two := cfg.NeedsSampling(); one || two {
		set, err := buildSampling(ctx, cfg, v, f.workers, one, two)
		if err != nil {
			return err
		}
		logger.Info().Int("samples", set.Samples()).Bool("cuts1d", one).Bool("cuts2d", two).Msg("sampling ready")
		opts = append(opts, cpd.WithSampling(set))
	}

	d, err := cpd.New(v, cfg.Rank, opts...)
	if err != nil {
		return err
	}
	if table != nil {
		e, err := cpd.Evaluate(v, d.State(), cfg.Regularization, cfg.UnitScale)
		if err != nil {
			return err
		}
		table.WriteRow(0, e)
	}

	for i, job := range cfg.Jobs {
		if job.Reset {
			d.Reset()
		}
		jobOpts, err := job.Options()
		if err != nil {
			return err
		}
		d.Apply(jobOpts...)

		res, err := runJob(ctx, d, job)
		logger.Info().
			Int("job", i).
			Str("mode", res.Mode.String()).
			Int("iterations", res.Iterations).
			Float64("rmse", res.Error).
			Bool("converged", res.Converged).
			Int("rank", res.Rank).
			Msg("job finished")
		if err != nil {
			return fmt.Errorf("job %d (%s): %w", i, job.Mode, err)
		}
	}

	if table != nil && table.Err() != nil {
		return fmt.Errorf("table: %w", table.Err())
	}
	logger.Info().
		Int("rank", d.Rank()).
		Float64("rmse", d.Error()).
		Float64("storage_pct", d.StorageRatio()).
		Msg("done")

	return nil
}

func runJob(ctx context.Context, d *cpd.Decomposer, job config.Job) (cpd.Result, error) {
	mode, err := config.ParseMode(job.Mode)
	if err != nil {
		return cpd.Result{}, err
	}
	switch mode {
	case cpd.ALS1D:
		return d.Run1D(ctx, job.MaxIter, job.Threshold)
	case cpd.ALS2D:
		return d.Run2D(ctx, job.MaxIter, job.Threshold)
	case cpd.MC1D:
		return d.RunMC1D(ctx, job.MaxIter, job.Threshold)
	default:
		return d.RunMC2D(ctx, job.MaxIter, job.Threshold)
	}
}

// buildSampling loads or draws the sample indices and precomputes the cuts
// the jobs need, using the loaded array as the potential.
func buildSampling(ctx context.Context, cfg config.Config, v *tensor.Dense, workers int, one, two bool) (*sampling.Set, error) {
	grid := cfg.Grids()

	var idx [][]int
	var err error
	if cfg.Sampling.Indices != "" {
		idx, err = sampling.LoadIndices(cfg.Sampling.Indices)
	} else {
		seed := cfg.Seed
		if seed == 0 {
			seed = 1
		}
		idx, err = sampling.Uniform(grid, cfg.Sampling.Samples, rand.New(rand.NewSource(seed)))
	}
	if err != nil {
		return nil, err
	}

	set, err := sampling.NewSet(grid, idx)
	if err != nil {
		return nil, err
	}
	pot, err := sampling.ArrayPotential(v, grid)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = cfg.Sampling.Workers
	}
	if one {
		if err = set.Build1D(ctx, pot, workers); err != nil {
			return nil, err
		}
	}
	if two {
		if err = set.Build2D(ctx, pot, workers); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
