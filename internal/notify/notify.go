// Package notify delivers email to donors. The domain depends on the Notifier
// interface only; delivery failures are a recorded fact (a failed
// notification), never a fatal error of the calling operation.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

// Notifier sends one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipientEmail, subject, body string) error
}

// Mailjet sends email through the Mailjet API.
type Mailjet struct {
	client *mailjet.Client
	sender string
}

// NewMailjet builds a Mailjet-backed notifier. Keys are required; use
// NewLogger when running without credentials.
func NewMailjet(publicKey, privateKey, sender string) *Mailjet {
	return &Mailjet{
		client: mailjet.NewMailjetClient(publicKey, privateKey),
		sender: sender,
	}
}

func (m *Mailjet) Send(_ context.Context, recipientEmail, subject, body string) error {
	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: m.sender, Name: "DonorLink"},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: recipientEmail}},
		Subject:  subject,
		TextPart: body,
	}}}

	if _, err := m.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	return nil
}

// Logger is the development notifier: it logs instead of sending.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Send(ctx context.Context, recipientEmail, subject, _ string) error {
	l.logger.InfoContext(ctx, "email suppressed (no mail credentials configured)",
		"recipient", recipientEmail,
		"subject", subject,
	)
	return nil
}
