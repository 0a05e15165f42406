package simulator

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(seed uint64, steps int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	s := NewState(BaseLevel)
	out := make([]float64, steps)
	for i := range out {
		s, out[i] = Step(s, rng)
	}
	return out
}

func TestStepStaysInRange(t *testing.T) {
	for _, level := range run(7, 5000) {
		assert.GreaterOrEqual(t, level, MinLevel)
		assert.LessOrEqual(t, level, MaxLevel)
	}
}

func TestStepIsDeterministicForSeed(t *testing.T) {
	assert.Equal(t, run(42, 200), run(42, 200))
	assert.NotEqual(t, run(42, 200), run(43, 200))
}

func TestStepDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := NewState(70)

	next, emitted := Step(s, rng)

	assert.Equal(t, 70.0, s.Level)
	assert.InDelta(t, next.Level, emitted, 0.005)
}

func TestNewStateClamps(t *testing.T) {
	assert.Equal(t, MaxLevel, NewState(500).Level)
	assert.Equal(t, MinLevel, NewState(-3).Level)
}
