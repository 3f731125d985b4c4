package tensor

import (
	"math/rand/v2"
)

// RNG is the random source used for weight initialization.
//
// Create one per process with NewRNG and pass it to every Randomize call;
// a fixed seed makes training runs reproducible.
type RNG struct {
	r *rand.Rand
}

// NewRNG returns a generator seeded with seed.
func NewRNG(seed uint64) *RNG {
	//nolint:gosec // Weight initialization is not security-critical.
	return &RNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Uniform returns a value drawn uniformly from [min, max).
func (g *RNG) Uniform(min, max float32) float32 {
	return min + g.r.Float32()*(max-min)
}

// Perm returns a random permutation of [0, n).
func (g *RNG) Perm(n int) []int {
	return g.r.Perm(n)
}

func (g *RNG) fill(data []float32, min, max float32) {
	for i := range data {
		data[i] = g.Uniform(min, max)
	}
}
