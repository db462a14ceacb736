package simulation

import "math/rand/v2"

// NewRand returns the random source for a run. Runs with the same seed
// replay identically.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// NewSeed picks a fresh non-zero seed. Zero means "unset" in configuration.
func NewSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
