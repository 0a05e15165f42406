package entities

import (
	"fmt"
	"time"
)

// Status is the outcome of comparing a reading with its danger level
type Status string

const (
	StatusSafe   Status = "Safe"
	StatusDanger Status = "Danger"
)

// ParseStatus converts the stored status text back into a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSafe, StatusDanger:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown alert status %q", s)
}

// AlertRecord is one entry of the append-only manual alert log
type AlertRecord struct {
	ID            string
	Location      string
	Timestamp     time.Time
	ObservedLevel float64
	Status        Status
}
