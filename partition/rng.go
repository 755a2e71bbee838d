// SPDX-License-Identifier: MIT

// Package partition - deterministic random source for the random strategy.
//
// Same seed ⇒ identical groups across runs and platforms; the global
// math/rand source is never consulted. A generator passed via WithRand is
// not goroutine-safe and must not be shared during the call.
package partition

import "math/rand"

// defaultRNGSeed replaces seed 0, so the zero Options value is reproducible.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a generator for seed, mapping 0 to defaultRNGSeed.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// permRange returns a uniformly random permutation of 0..n-1, shuffled
// Fisher–Yates from the top down with draws from rng. rng must not be nil.
//
// Complexity: O(n) time, O(n) space.
func permRange(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	return p
}
