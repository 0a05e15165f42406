package integration

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/simulator"
)

// SimulatedSource produces one simulated reading per location per call.
// Each location keeps its own simulator state.
type SimulatedSource struct {
	mu     sync.Mutex
	rng    *rand.Rand
	states map[string]simulator.State
	now    func() time.Time
}

// NewSimulatedSource creates a source seeded with seed; zero picks a seed
// from the clock
func NewSimulatedSource(seed uint64) *SimulatedSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SimulatedSource{
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		states: make(map[string]simulator.State),
		now:    time.Now,
	}
}

// Next advances every location by one step and returns the emitted readings
func (s *SimulatedSource) Next(locations []string) []entities.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now().UTC().Truncate(time.Minute)
	readings := make([]entities.Reading, 0, len(locations))
	for _, loc := range locations {
		key := entities.NormalizeLocation(loc)
		state, ok := s.states[key]
		if !ok {
			state = simulator.NewState(simulator.BaseLevel)
		}
		next, level := simulator.Step(state, s.rng)
		s.states[key] = next
		readings = append(readings, entities.Reading{Location: loc, Timestamp: at, Level: level})
	}
	return readings
}

// History generates hours of hourly readings for location ending now.
// Used to seed an empty database.
func (s *SimulatedSource) History(location string, hours int) []entities.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.now().UTC().Truncate(time.Hour)
	state := simulator.NewState(simulator.BaseLevel)
	readings := make([]entities.Reading, 0, hours)
	for i := hours - 1; i >= 0; i-- {
		var level float64
		state, level = simulator.Step(state, s.rng)
		readings = append(readings, entities.Reading{
			Location:  location,
			Timestamp: end.Add(-time.Duration(i) * time.Hour),
			Level:     level,
		})
	}
	s.states[entities.NormalizeLocation(location)] = state
	return readings
}
