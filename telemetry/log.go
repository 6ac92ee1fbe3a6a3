// SPDX-License-Identifier: MIT

package telemetry

import (
	"github.com/katalvlaran/alscpd/cpd"
	"github.com/rs/zerolog"
)

// LogObserver writes run events to a zerolog.Logger: starts and rank changes
// at info level, iterations at debug level.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver returns a LogObserver writing to l with component=cpd.
func NewLogObserver(l zerolog.Logger) *LogObserver {
	return &LogObserver{log: l.With().Str("component", "cpd").Logger()}
}

// OnStart implements cpd.Observer.
func (o *LogObserver) OnStart(mode cpd.Mode, rank int) {
	o.log.Info().Str("mode", mode.String()).Int("rank", rank).Msg("run started")
}

// OnIteration implements cpd.Observer.
func (o *LogObserver) OnIteration(it cpd.Iteration) {
	o.log.Debug().
		Str("mode", it.Mode.String()).
		Int("iteration", it.Index).
		Int("rank", it.Rank).
		Float64("rmse_left", it.ErrorLeft).
		Float64("rmse_right", it.ErrorRight).
		Float64("rmse_total", it.ErrorTotal).
		Msg("iteration")
}

// OnRankChange implements cpd.Observer.
func (o *LogObserver) OnRankChange(oldRank, newRank int) {
	o.log.Info().Int("from", oldRank).Int("to", newRank).Msg("rank increased")
}
