package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Location is a monitored place with its danger threshold
type Location struct {
	Name        string
	DangerLevel float64 // Danger threshold in cm
}

// Thresholds maps location names to danger levels. Lookups ignore case
// and surrounding whitespace; stored names keep their configured casing.
type Thresholds struct {
	byKey map[string]Location
}

// NewThresholds builds a threshold table from a name to level mapping.
// Every level must be positive and names must stay unique ignoring case.
func NewThresholds(levels map[string]float64) (*Thresholds, error) {
	t := &Thresholds{byKey: make(map[string]Location, len(levels))}
	for name, level := range levels {
		key := NormalizeLocation(name)
		if key == "" {
			return nil, fmt.Errorf("empty location name in thresholds")
		}
		if !(level > 0) {
			return nil, fmt.Errorf("danger level for %s must be positive, got %v", name, level)
		}
		if _, dup := t.byKey[key]; dup {
			return nil, fmt.Errorf("location %s configured twice", name)
		}
		t.byKey[key] = Location{Name: strings.TrimSpace(name), DangerLevel: level}
	}
	return t, nil
}

// Lookup returns the configured location for name or ErrUnknownLocation
func (t *Thresholds) Lookup(name string) (Location, error) {
	loc, ok := t.byKey[NormalizeLocation(name)]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return loc, nil
}

// Locations returns all configured locations sorted by name
func (t *Thresholds) Locations() []Location {
	locs := make([]Location, 0, len(t.byKey))
	for _, loc := range t.byKey {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		return NormalizeLocation(locs[i].Name) < NormalizeLocation(locs[j].Name)
	})
	return locs
}

// Levels returns a copy of the name to danger level mapping for display
func (t *Thresholds) Levels() map[string]float64 {
	out := make(map[string]float64, len(t.byKey))
	for _, loc := range t.byKey {
		out[loc.Name] = loc.DangerLevel
	}
	return out
}

// NormalizeLocation is the matching form of a location name
func NormalizeLocation(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
