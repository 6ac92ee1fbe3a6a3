// SPDX-License-Identifier: MIT

// Package cpd computes Canonical Polyadic Decompositions of dense arrays by
// Alternating Least Squares:
//
//	V ≈ Σ_m c[m] · f_1[m,:] ⊗ f_2[m,:] ⊗ … ⊗ f_D[m,:]
//
// What lives here:
//
//   - State: factors with unit rows, weights and the sigma cache σ_k = f_k·f_kᵀ.
//   - HoleOverlap: Hadamard product of all sigmas but 0, 1 or 2 axes; the
//     left-hand side of every normal equation.
//   - Update1D: one-axis solve (S + εI)·x = b followed by row normalization.
//   - Update2D: joint pair solve, rank-1 reduction of every component by its
//     dominant singular triplet, then up to DefaultSubIterations rounds of
//     refinement with the Exact, TruncatedY or TruncatedB strategy.
//   - MonteCarlo: the same updates with the contractions replaced by sums over
//     sampled cuts (see package sampling).
//   - ChangeRank: grow the expansion, keeping existing rows bit-identical.
//   - Evaluate: the split error functional (fit, regularization, total).
//   - Decomposer: Run1D, Run2D, RunMC1D, RunMC2D loops with divergence guard,
//     optional rank growth, best-of-run restore for sampled runs, and an
//     Observer for progress.
//
// Every update computes into locals and commits weights, factors and sigmas
// together, so a failed update leaves the State as it was.
//
// Errors are sentinels (ErrNumericalInstability, ErrDivergence, ErrInvalidRank,
// ErrAxis, …) matched with errors.Is; *DivergenceError and *InvalidRankError
// carry diagnostics.
//
// Concurrency: none of the types here are safe for concurrent use. The only
// parallel stage (cut precomputation) lives in package sampling and finishes
// before a run starts.
//
// Complexity per outer iteration (r = rank, |V| = ΠN_k):
//
//	Run1D   O(D·(r·|V| + r³))
//	Run2D   O(P·(r·|V| + r·N_i·N_j·min(N_i,N_j) + rounds·r²·N_i·N_j))
//	RunMC*  as above with |V| replaced by the sample count for the contraction
package cpd
