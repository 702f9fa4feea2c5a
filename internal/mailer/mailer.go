// Package mailer delivers transactional messages. Only a logging transport
// exists; it stands in for an SMTP or provider integration during development.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/alemt19/ats-sub001/pkg/mask"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
	// Kind tags the message for logs, e.g. "verify_email".
	Kind string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log after a fixed delay, throttled to a
// steady rate.
type LogMailer struct {
	from    string
	delay   time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewLogMailer returns a LogMailer. perSecond <= 0 disables throttling.
func NewLogMailer(from string, delay time.Duration, perSecond int, logger *slog.Logger) *LogMailer {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = perSecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{
		from:    from,
		delay:   delay,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Send blocks for the configured delay, then logs the message with the recipient masked.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: recipient required")
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mailer: throttled: %w", err)
	}
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	m.logger.Info("email delivered",
		"from", m.from,
		"to", mask.Email(msg.To),
		"kind", msg.Kind,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// VerificationMessage asks the user to confirm their address with code.
func VerificationMessage(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Kind:    "verify_email",
		Subject: "Confirm your email address",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %s.\n",
			greeting(name), code, humanize(ttl)),
	}
}

// PasswordResetMessage carries a password recovery code.
func PasswordResetMessage(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Kind:    "reset_password",
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the code %s to reset your password. It expires in %s.\nIf you did not ask for this, ignore this email.\n",
			greeting(name), code, humanize(ttl)),
	}
}

func greeting(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
