package propagation

import (
	"math/rand/v2"
	"time"
)

// RandomSource supplies uniform samples in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a PCG-backed source. A zero seed draws one from the clock.
func NewRandomSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DeriveSeed gives each batch entry its own stream from one base seed.
func DeriveSeed(base uint64, index int) uint64 {
	return base + uint64(index)*0x9e3779b97f4a7c15 + 1
}
