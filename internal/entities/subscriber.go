package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocationSeparator joins subscribed locations in the persisted form
const LocationSeparator = ","

// Subscriber is a signed-up recipient of danger notifications.
// Records are never updated; signing up twice creates two subscribers.
type Subscriber struct {
	ID             string
	Name           string
	ContactAddress string   // e-mail address or telegram:<chat id>
	Locations      []string // Subscribed locations in the casing given at signup
	CreatedAt      time.Time
}

// SubscribedTo reports whether location is one of the subscriber's locations
func (s Subscriber) SubscribedTo(location string) bool {
	want := NormalizeLocation(location)
	if want == "" {
		return false
	}
	for _, l := range s.Locations {
		if NormalizeLocation(l) == want {
			return true
		}
	}
	return false
}

// JoinLocations renders locations in the stored comma separated form
func JoinLocations(locations []string) string {
	return strings.Join(locations, LocationSeparator)
}

// SplitLocations parses the stored form back, dropping empty entries
func SplitLocations(joined string) []string {
	var out []string
	for _, part := range strings.Split(joined, LocationSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewSubscriber creates a subscriber record with a fresh ID. Comma joined
// location entries are split and blank ones dropped.
func NewSubscriber(name, contactAddress string, locations []string, createdAt time.Time) Subscriber {
	// same normalisation as a stored round trip
	locs := SplitLocations(JoinLocations(locations))
	return Subscriber{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		ContactAddress: strings.TrimSpace(contactAddress),
		Locations:      locs,
		CreatedAt:      createdAt,
	}
}
