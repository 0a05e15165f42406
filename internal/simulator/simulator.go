// Package simulator generates plausible hourly water levels for demos and
// local development when no gauge is reachable.
package simulator

import (
	"math"
	"math/rand/v2"
)

// Level bounds in cm
const (
	BaseLevel = 60.0
	MinLevel  = 40.0
	MaxLevel  = 100.0
)

// State is the simulated gauge between two steps
type State struct {
	Level float64
}

// NewState starts a gauge at base, clamped to the simulated range
func NewState(base float64) State {
	return State{Level: clamp(base)}
}

// Step advances the gauge by one tick. It is pure: the next state depends
// only on s and the values drawn from rng, so a seeded generator replays
// the same sequence.
//
// Each tick drifts by U(-2, 3.5); with 10% probability heavy rain adds
// U(5, 12) and with 5% probability a dry spell removes U(4, 8). The emitted
// level is rounded to two decimals, the state keeps full precision.
func Step(s State, rng *rand.Rand) (State, float64) {
	change := uniform(rng, -2.0, 3.5)

	if rng.Float64() < 0.1 {
		change += uniform(rng, 5.0, 12.0)
	}
	if rng.Float64() < 0.05 {
		change -= uniform(rng, 4.0, 8.0)
	}

	next := State{Level: clamp(s.Level + change)}
	return next, math.Round(next.Level*100) / 100
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func clamp(level float64) float64 {
	return math.Max(MinLevel, math.Min(level, MaxLevel))
}
