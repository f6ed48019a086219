// Package mailer sends outbound email, one independent message per
// recipient.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender is the outbound email boundary.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// SMTPSender implements Sender over an authenticated SMTP connection.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// SMTPOptions configures an SMTPSender.
type SMTPOptions struct {
	Port     int
	Username string
	Password string
}

// NewSMTPSender constructs a sender for the given host and from address.
func NewSMTPSender(host, from string, optFns ...func(o *SMTPOptions)) (*SMTPSender, error) {
	opts := SMTPOptions{Port: 587}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: from}, nil
}

// Send delivers one message to one recipient.
func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", recipient, err)
	}

	return nil
}
