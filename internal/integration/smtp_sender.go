package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string // defaults to User
}

// SMTPSender delivers notifications as plain-text e-mail
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an e-mail sender
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. STARTTLS is used when the server offers it.
// A deadline on ctx also bounds the exchange after the dial.
func (s *SMTPSender) Send(ctx context.Context, address, subject, body string) error {
	msg, err := newMessage(s.cfg.From, address, subject, body)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 {
			opts = append(opts, mail.WithTimeout(left))
		}
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("invalid smtp settings: %w", err)
	}

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	defer client.Close()

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}
	return nil
}

// newMessage builds the plain-text alert e-mail
func newMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid e-mail address %q: %w", to, err)
	}
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
