// SPDX-License-Identifier: MIT

// Command alscpd runs the CP decomposition jobs described by a YAML file.
//
//	alscpd run --config job.yaml [--log-level debug] [--metrics-addr :9090]
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("alscpd failed")
		os.Exit(1)
	}
}
