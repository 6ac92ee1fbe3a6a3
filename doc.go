// SPDX-License-Identifier: MIT

// Package alscpd compresses multidimensional arrays into a sum of rank-one
// terms (a canonical polyadic, or CP, expansion) using alternating least
// squares.
//
// What is in the box?
//
//	• tensor:    dense row-major arrays, binary I/O, contraction, reconstruction
//	• matrix:    Gram/Hadamard products, regularized solves, thin SVD on gonum
//	• cpd:       decomposition state, 1D and 2D ALS updates, rank growth,
//	             Monte Carlo sweeps and the run loops (Decomposer)
//	• sampling:  grids, sample indices and the parallel cut precomputation
//	• telemetry: zerolog, Prometheus and iteration-table observers
//	• config:    YAML job files
//	• cmd/alscpd: the command-line driver
//
// Typical flow:
//
//	v, _ := tensor.LoadBinary("pes.bin", []int{16, 16, 16})
//	d, _ := cpd.New(v, 8, cpd.WithSeed(1), cpd.WithRankGrowth(4))
//	res, _ := d.Run1D(ctx, 100, 1e-3)
//
// Every factor row is kept at unit Euclidean norm; the weights carry the
// scale. Errors are reported as root-mean-square deviations split into a
// fit part and a regularization part.
//
// See examples/ for a complete scenario on an analytic surface.
package alscpd
