// SPDX-License-Identifier: MIT

package telemetry

import (
	"github.com/katalvlaran/alscpd/cpd"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports decomposition progress as Prometheus collectors. It
// implements cpd.Observer.
type Metrics struct {
	Error       *prometheus.GaugeVec   // labels: mode, part (left|right|total)
	Iterations  *prometheus.CounterVec // labels: mode
	Runs        *prometheus.CounterVec // labels: mode
	Rank        prometheus.Gauge
	RankChanges prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Error: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alscpd_rmse",
				Help: "Latest RMSE of the ALS functional by part",
			},
			[]string{"mode", "part"},
		),
		Iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alscpd_iterations_total",
				Help: "Completed outer iterations",
			},
			[]string{"mode"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alscpd_runs_total",
				Help: "Started run loops",
			},
			[]string{"mode"},
		),
		Rank: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alscpd_rank",
			Help: "Current rank of the expansion",
		}),
		RankChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alscpd_rank_changes_total",
			Help: "Automatic rank increases",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Error, m.Iterations, m.Runs, m.Rank, m.RankChanges} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnStart implements cpd.Observer.
func (m *Metrics) OnStart(mode cpd.Mode, rank int) {
	m.Runs.WithLabelValues(mode.String()).Inc()
	m.Rank.Set(float64(rank))
}

// OnIteration implements cpd.Observer.
func (m *Metrics) OnIteration(it cpd.Iteration) {
	mode := it.Mode.String()
	m.Iterations.WithLabelValues(mode).Inc()
	m.Error.WithLabelValues(mode, "left").Set(it.ErrorLeft)
	m.Error.WithLabelValues(mode, "right").Set(it.ErrorRight)
	m.Error.WithLabelValues(mode, "total").Set(it.ErrorTotal)
	m.Rank.Set(float64(it.Rank))
}

// OnRankChange implements cpd.Observer.
func (m *Metrics) OnRankChange(_, newRank int) {
	m.RankChanges.Inc()
	m.Rank.Set(float64(newRank))
}
