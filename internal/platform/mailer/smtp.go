// Copyright (c) 2026 TaskForge. All rights reserved.

package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the connection settings for an outbound SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender address stamped on every outbound message.
	From string
}

// SMTPMailer delivers messages through an authenticated SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer constructs an [SMTPMailer].
//
// The client is created eagerly so that invalid settings (bad port, missing
// host) surface at startup rather than on the first registration.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to create smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendMessage implements [Mailer] by relaying a plain-text message over SMTP.
func (m *SMTPMailer) SendMessage(ctx context.Context, toAddress, subject, body string) error {
	message := gomail.NewMsg()

	if err := message.From(m.from); err != nil {
		return fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := message.To(toAddress); err != nil {
		return fmt.Errorf("mailer: invalid recipient address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("mailer: smtp delivery failed: %w", err)
	}

	return nil
}
