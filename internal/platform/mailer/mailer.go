// Copyright (c) 2026 TaskForge. All rights reserved.

/*
Package mailer defines the outbound notification contract and its implementations.

The auth service hands verification and reset tokens to a [Mailer] and moves
on: delivery is fire-and-forget from the caller's perspective, and a delivery
failure never rolls back already-committed account or token state. Callers
surface the failure as a degraded-success result instead.

Implementations:

  - SMTPMailer: real delivery through an SMTP relay (wneessen/go-mail).
  - LogMailer: development fallback that writes the message to the log.
*/
package mailer

import (
	"context"
	"log/slog"
)

// Mailer is the notification collaborator contract consumed by the auth service.
type Mailer interface {
	// SendMessage delivers a plain-text message to a single recipient.
	SendMessage(ctx context.Context, toAddress, subject, body string) error
}

// # Development Fallback

// LogMailer is a Mailer that writes messages to the structured log instead of
// delivering them. Used when no SMTP relay is configured.
//
// The body is logged verbatim, which in development conveniently exposes the
// verification/reset links. Never wire this in production.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendMessage implements [Mailer] by logging the message.
func (m *LogMailer) SendMessage(ctx context.Context, toAddress, subject, body string) error {
	m.logger.InfoContext(ctx, "mail_logged_instead_of_sent",
		slog.String("to", toAddress),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
