// SPDX-License-Identifier: MIT

package cpd

import "math/rand"

// fallbackSeed stands in for a zero seed.
const fallbackSeed int64 = 1

func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return fallbackSeed
	}
	return seed
}

// newRNG returns the generator of the initial random factors.
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(resolveSeed(seed)))
}

// growthRNG returns the generator of the rows added when growing to newRank.
// It depends only on (seed, newRank), so clones grow identically.
func growthRNG(seed int64, newRank int) *rand.Rand {
	return rand.New(rand.NewSource(mixSeed(resolveSeed(seed), uint64(newRank))))
}

// mixSeed scrambles (seed, rank) with the splitmix64 output function.
func mixSeed(seed int64, rank uint64) int64 {
	z := uint64(seed) + (rank+1)*0x9e3779b97f4a7c15
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return int64(z ^ z>>31)
}
