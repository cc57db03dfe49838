package simulation

import "math/rand"

// RandomSource is the only way the engine draws randomness. Tests inject
// scripted sources to make ticks reproducible.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n must be positive.
	Intn(n int) int
}

// NewRandom returns a seeded source. It is not safe for concurrent use; the
// registry only draws from it while holding its lock.
func NewRandom(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
