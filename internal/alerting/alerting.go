// Package alerting evaluates manual level readings against danger thresholds,
// records the outcome in the alert log and notifies subscribers of locations
// in danger.
package alerting

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelzeko/water-alert/internal/entities"
)

// SubscriberDirectory stores signed-up subscribers
type SubscriberDirectory interface {
	Add(ctx context.Context, name, contactAddress string, locations []string) (entities.Subscriber, error)
	Matching(ctx context.Context, location string) ([]entities.Subscriber, error)
}

// AlertLog is the append-only store of alert records
type AlertLog interface {
	AppendAlert(ctx context.Context, record entities.AlertRecord) error
}

// Sender hands a notification to a delivery channel
type Sender interface {
	Send(ctx context.Context, address, subject, body string) error
}

// LocationError ties a batch failure to the location it happened for
type LocationError struct {
	Location string
	Err      error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

// FailedLocations lists the locations named by LocationErrors inside err
func FailedLocations(err error) []string {
	var out []string
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		var le *LocationError
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		if errors.As(err, &le) {
			out = append(out, le.Location)
		}
	}
	walk(err)
	return out
}
