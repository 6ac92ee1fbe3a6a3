// SPDX-License-Identifier: MIT

// Package telemetry provides cpd.Observer implementations:
//
//   - LogObserver: structured progress events on a zerolog.Logger.
//   - Metrics: Prometheus gauges and counters (error split, rank, iterations).
//   - TableObserver: the plain "! Iteration RMSEleft RMSEright RMSEtot" table.
//
// Combine them with cpd.Observers. Observers are called from the run loop
// goroutine only; Metrics collectors may be scraped concurrently.
package telemetry
