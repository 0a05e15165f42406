package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"go.uber.org/zap"
)

// DefaultDeliveryTimeout bounds a single delivery attempt
const DefaultDeliveryTimeout = 10 * time.Second

// TimestampLayout is how alert times appear in notifications and logs
const TimestampLayout = "2006-01-02 15:04:05"

// DispatchReport summarizes one fan-out
type DispatchReport struct {
	Matched int
	Sent    int
	Failed  int
}

// Dispatcher sends one notification to every subscriber of a location.
// It keeps no memory between calls: invoking it twice for the same event
// notifies everyone twice.
type Dispatcher struct {
	directory  SubscriberDirectory
	thresholds *entities.Thresholds
	sender     Sender
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher. A non-positive timeout selects
// DefaultDeliveryTimeout.
func NewDispatcher(directory SubscriberDirectory, thresholds *entities.Thresholds, sender Sender, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		directory:  directory,
		thresholds: thresholds,
		sender:     sender,
		timeout:    timeout,
		logger:     logger,
	}
}

// Dispatch notifies the subscribers of location about a danger reading.
// Delivery failures are logged and counted; they never stop the fan-out
// and are not returned. The error covers an unknown location or a failed
// subscriber lookup.
func (d *Dispatcher) Dispatch(ctx context.Context, location string, level float64, at time.Time) (DispatchReport, error) {
	var report DispatchReport

	loc, err := d.thresholds.Lookup(location)
	if err != nil {
		return report, err
	}

	subscribers, err := d.directory.Matching(ctx, loc.Name)
	if err != nil {
		return report, fmt.Errorf("failed to look up subscribers for %s: %w", loc.Name, err)
	}
	report.Matched = len(subscribers)

	for _, sub := range subscribers {
		subject, body := composeAlert(sub, loc, level, at)
		if err := d.deliver(ctx, sub.ContactAddress, subject, body); err != nil {
			report.Failed++
			d.logger.Warn("Notification delivery failed",
				zap.String("subscriber_id", sub.ID),
				zap.String("address", redactAddress(sub.ContactAddress)),
				zap.String("location", loc.Name),
				zap.Error(err),
			)
			continue
		}
		report.Sent++
		d.logger.Info("Notification sent",
			zap.String("subscriber_id", sub.ID),
			zap.String("address", redactAddress(sub.ContactAddress)),
			zap.String("location", loc.Name),
		)
	}

	return report, nil
}

func (d *Dispatcher) deliver(ctx context.Context, address, subject, body string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: sender panic: %v", entities.ErrDeliveryFailure, r)
		}
	}()

	if err := d.sender.Send(ctx, address, subject, body); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrDeliveryFailure, err)
	}
	return nil
}

func composeAlert(sub entities.Subscriber, loc entities.Location, level float64, at time.Time) (subject, body string) {
	subject = fmt.Sprintf("🚨 Water Level Alert for %s", loc.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", sub.Name)
	fmt.Fprintf(&b, "The water level in %s has crossed the danger threshold.\n\n", loc.Name)
	fmt.Fprintf(&b, "Current Level: %s cm\n", formatLevel(level))
	fmt.Fprintf(&b, "Time: %s\n", at.Format(TimestampLayout))
	fmt.Fprintf(&b, "Danger Level: %s cm\n\n", formatLevel(loc.DangerLevel))
	b.WriteString("Please stay safe.\n")
	return subject, b.String()
}

func formatLevel(level float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", level), "0"), ".")
}

// redactAddress keeps enough of an address to correlate log lines
func redactAddress(address string) string {
	if at := strings.LastIndex(address, "@"); at > 0 {
		return address[:1] + "***" + address[at:]
	}
	if i := strings.Index(address, ":"); i >= 0 {
		return address[:i+1] + "***"
	}
	return "***"
}
