package ratemath

import "math/rand"

// newSource wraps the standard library's deterministic PRNG as a
// gonum-compatible rand.Source. math/rand's algorithm is fully
// specified and stable across Go releases for a given seed, which is
// what the kernel's reproducibility contract (spec §5) depends on.
func newSource(seed uint64) rand.Source {
	return rand.NewSource(int64(seed))
}
