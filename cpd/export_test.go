// SPDX-License-Identifier: MIT

package cpd

import (
	"github.com/katalvlaran/alscpd/matrix"
	"github.com/katalvlaran/alscpd/tensor"
)

var (
	Assess         = assess
	ScheduledPairs = scheduledPairs
	GatherOptions  = gatherOptions
)

// PairHistory runs one exact-path pair update on st without committing and
// returns the refinement history.
func PairHistory(v *tensor.Dense, st *State, i, j int, strategy Strategy, rounds int) ([]float64, error) {
	cfg := defaultPairConfig(strategy, DefaultRegularization)
	cfg.subIterations = rounds
	sij, err := HoleOverlap(st.sigmas, i, j)
	if err != nil {
		return nil, err
	}
	b, err := tensor.ContractExcept(v, st.factors, i, j)
	if err != nil {
		return nil, err
	}
	x, err := matrix.SolveRegularized(sij, cfg.eps, b)
	if err != nil {
		return nil, err
	}
	_, hist, err := reduceAndRefine(st, i, j, sij, x, cfg)
	return hist, err
}
