// Package entities contains the core domain objects for the water-alert application
package entities

import (
	"fmt"
	"math"
	"time"
)

// Reading represents a single water level observation
type Reading struct {
	Location  string    // Monitored location the gauge belongs to
	Timestamp time.Time // When the level was observed
	Level     float64   // Water level in cm
}

// Validate checks that the reading can be stored in a series
func (r Reading) Validate() error {
	if err := CheckLevel(r.Level); err != nil {
		return fmt.Errorf("reading for %s: %w", r.Location, err)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("reading for %s has no timestamp", r.Location)
	}
	return nil
}

// CheckLevel rejects NaN and infinite levels
func CheckLevel(level float64) error {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return fmt.Errorf("%w: %v", ErrNonFiniteLevel, level)
	}
	return nil
}

// Series is the time-ordered reading history of one location
type Series []Reading

// Latest returns the most recent reading of the series
func (s Series) Latest() (Reading, bool) {
	if len(s) == 0 {
		return Reading{}, false
	}
	return s[len(s)-1], true
}

// Levels returns the level values in series order
func (s Series) Levels() []float64 {
	levels := make([]float64, len(s))
	for i, r := range s {
		levels[i] = r.Level
	}
	return levels
}

// Ordered reports whether timestamps never decrease
func (s Series) Ordered() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Before(s[i-1].Timestamp) {
			return false
		}
	}
	return true
}
