package transition

import "math/rand/v2"

// RandomSource supplies the randomness of randomized effects (sweep
// direction, wedge count, stamp positions, the Random effect pick).
//
// *rand.Rand from math/rand/v2 satisfies RandomSource, so tests can inject
// a seeded generator with NewRandom.
type RandomSource interface {
	// IntN returns a value in [0, n). n > 0.
	IntN(n int) int

	// Float64 returns a value in [0, 1).
	Float64() float64
}

// globalRandom draws from the process-wide math/rand/v2 source.
type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// NewRandom returns a deterministic RandomSource seeded with seed.
func NewRandom(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
