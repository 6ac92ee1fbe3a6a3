// SPDX-License-Identifier: MIT

// Package sampling prepares the inputs of the Monte Carlo ALS variant: sample
// index tuples on a product grid, their physical coordinates, and the 1D/2D
// potential cuts through every sample point.
//
// A cut fixes all coordinates of a sample except one axis (1D) or one axis
// pair (2D) and evaluates the potential along the free axes:
//
//	1D cut of axis k:      N_k × s          (row a, column p)
//	2D cut of pair (i, j): (N_i·N_j) × s    (row a·N_j + b, column p)
//
// Cuts are computed once, before the solve loop, one work unit per axis or
// pair on a bounded errgroup pool. The first failing unit cancels the batch
// and no partial result is kept.
//
// Set bundles the indices with their cuts and tracks whether each cut kind is
// Ready. The cpd package consumes a Ready Set through cpd.WithSampling.
package sampling
