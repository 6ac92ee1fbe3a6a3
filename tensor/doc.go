// SPDX-License-Identifier: MIT

// Package tensor holds the dense D-dimensional target array of a CP
// decomposition and the two operations the ALS engine needs from it.
//
// What lives here:
//
//   - Dense: row-major float64 storage with an explicit shape.
//   - ReadBinary / LoadBinary: flat little-endian float64 files reshaped to a
//     declared grid.
//   - ContractExcept: contract V against every factor except 1 or 2 "free"
//     axes, producing the right-hand side of the ALS normal equations.
//   - Reconstruct: Σ_m c[m]·f_1[m,:]⊗…⊗f_D[m,:] back on the full grid.
//
// Contraction order:
//
// The last contracted axis is consumed first against the whole factor matrix,
// which places the component axis in front (one gemm when that axis is the
// trailing one). Every later contraction pairs component m with row m of the
// next factor. When nothing is left to contract the array is broadcast to all
// components.
//
// Complexity:
//
//	ContractExcept  O(r·ΠN_k)
//	Reconstruct     O(r·ΠN_k)
package tensor
