// Package mailer delivers transactional email (one-time codes).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a plain-text email with an optional HTML body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(m.To)); err != nil {
		return fmt.Errorf("recipient: %w", err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return errors.New("text body is required")
	}
	return nil
}

// LogMailer writes messages to the structured log instead of sending them.
// It backs local development when no SendGrid key is configured.
type LogMailer struct {
	logg *logger.Logger
}

// NewLogMailer builds a LogMailer.
func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"mail_to":      msg.To,
			"mail_subject": msg.Subject,
			"mail_body":    msg.Text,
		})
		m.logg.Info(ctx, "mail.logged")
	}
	return nil
}

// New picks SendGrid when configured, otherwise the log mailer. Production
// refuses to start without SendGrid.
func New(cfg config.Config, logg *logger.Logger) (Mailer, error) {
	if cfg.Sendgrid.Enabled() {
		return NewSendGridClient(cfg.Sendgrid.APIKey, cfg.Sendgrid.DefaultFrom, WithBaseURL(cfg.Sendgrid.BaseURL))
	}
	if cfg.App.IsProd() {
		return nil, errors.New("sendgrid api key and from address are required in production")
	}
	return NewLogMailer(logg), nil
}

// OTPMessage renders the email that carries a one-time code.
func OTPMessage(to, code, purpose string, ttl time.Duration) Message {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	action := "verify your email"
	switch purpose {
	case "create-admin":
		action = "create the admin account"
	case "reset-pin":
		action = "reset your PIN"
	case "reset-email":
		action = "change the admin email"
	}
	text := fmt.Sprintf("Your verification code is %s.\n\nUse it to %s. It expires in %d minutes.\nIf you did not request this code you can ignore this email.", code, action, minutes)
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p><p>Use it to %s. It expires in %d minutes.</p><p>If you did not request this code you can ignore this email.</p>", code, action, minutes)
	return Message{
		To:      to,
		Subject: "Your FleetStock verification code",
		Text:    text,
		HTML:    html,
	}
}
