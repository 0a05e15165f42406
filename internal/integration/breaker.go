package integration

import (
	"context"
	"time"

	"github.com/abelzeko/water-alert/internal/alerting"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSender trips after consecutive delivery failures so that an
// unreachable provider fails fast for the rest of a fan-out instead of
// costing a full timeout per subscriber. It never retries.
type BreakerSender struct {
	next    alerting.Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps next in a circuit breaker named name. The breaker
// opens after maxFailures consecutive failures and probes again after
// cooldown.
func NewBreakerSender(name string, next alerting.Sender, maxFailures uint32, cooldown time.Duration, logger *zap.Logger) *BreakerSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Delivery circuit breaker changed state",
				zap.String("channel", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerSender{next: next, breaker: cb}
}

// Send forwards to the wrapped sender through the breaker. While the breaker
// is open it fails fast with gobreaker.ErrOpenState.
func (b *BreakerSender) Send(ctx context.Context, address, subject, body string) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, address, subject, body)
	})
	return err
}

// State reports the breaker state
func (b *BreakerSender) State() gobreaker.State {
	return b.breaker.State()
}
