package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abelzeko/water-alert/internal/alerting"
)

// ErrChannelNotConfigured is returned for an address whose channel is disabled
var ErrChannelNotConfigured = errors.New("delivery channel not configured")

// RoutingSender picks the delivery channel from the shape of the address:
// telegram:<chat id> goes to Telegram, anything with an @ goes to e-mail
type RoutingSender struct {
	Telegram alerting.Sender
	Email    alerting.Sender
}

// Send delivers through the channel matching address. Unknown address
// shapes and disabled channels are errors.
func (r *RoutingSender) Send(ctx context.Context, address, subject, body string) error {
	channel, name := r.route(address)
	if name == "" {
		return fmt.Errorf("unsupported contact address %q", address)
	}
	if channel == nil {
		return fmt.Errorf("%w: %s", ErrChannelNotConfigured, name)
	}
	return channel.Send(ctx, address, subject, body)
}

func (r *RoutingSender) route(address string) (alerting.Sender, string) {
	switch {
	case strings.HasPrefix(strings.TrimSpace(address), TelegramAddressPrefix):
		return r.Telegram, "telegram"
	case strings.Contains(address, "@"):
		return r.Email, "email"
	}
	return nil, ""
}
