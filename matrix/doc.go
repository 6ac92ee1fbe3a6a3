// SPDX-License-Identifier: MIT

// Package matrix provides the small set of dense linear-algebra kernels the
// CP-ALS engine is built from, on top of gonum's mat package.
//
// What lives here:
//
//   - Gram and Hadamard products for the per-axis overlap algebra.
//   - SolveRegularized: (S + εI)·X = B for symmetric positive semi-definite S,
//     solved by Cholesky. Failure surfaces as ErrSingular.
//   - NormalizeRows: in-place unit-L2 row normalization returning the norms.
//   - Thin SVD helpers: DominantTriplet and ThinSVD with a truncation rule.
//   - Central validators and sentinel errors (errors.Is friendly).
//
// Conventions:
//
//   - Factor matrices are r×N (one row per CP component).
//   - Kernels never panic on user input; they return sentinels wrapped with
//     an operation tag ("Op: matrix: ...").
//   - No logging, no global state, deterministic loop orders.
//
// Complexity quicksheet:
//
//	Gram        O(r²·N)
//	Hadamard    O(r²)
//	Solve       O(r³ + r²·M)
//	ThinSVD     O(m·n·min(m,n))
package matrix
