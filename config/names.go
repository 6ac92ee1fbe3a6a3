// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/katalvlaran/alscpd/cpd"
)

// ParseMode maps a job mode name to cpd.Mode.
func ParseMode(s string) (cpd.Mode, error) {
	for _, m := range []cpd.Mode{cpd.ALS1D, cpd.ALS2D, cpd.MC1D, cpd.MC2D} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// ParseStrategy maps a strategy name to cpd.Strategy; "" is cpd.DefaultStrategy.
func ParseStrategy(s string) (cpd.Strategy, error) {
	if s == "" {
		return cpd.DefaultStrategy, nil
	}
	for _, st := range []cpd.Strategy{cpd.Exact, cpd.TruncatedY, cpd.TruncatedB} {
		if s == st.String() {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// ParseSchedule maps "alternating" or "all" to cpd.PairSchedule; "" is the default.
func ParseSchedule(s string) (cpd.PairSchedule, error) {
	switch s {
	case "":
		return cpd.DefaultPairSchedule, nil
	case "alternating":
		return cpd.AlternatingPairs, nil
	case "all":
		return cpd.AllPairs, nil
	default:
		return 0, fmt.Errorf("unknown schedule %q", s)
	}
}
