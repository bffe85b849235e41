package neat

import (
	"math"
	"math/rand"
)

// uniform returns a value drawn uniformly from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// chance reports whether a Bernoulli trial with probability p succeeds.
func chance(rng *rand.Rand, p float64) bool {
	return p > 0 && rng.Float64() < p
}

// isProbability reports whether p is a finite value in [0, 1].
func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
