// Package notify delivers notifications over e-mail, chat and push, and fans
// operator alerts out to the configured channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"orderflow/internal/core/ports"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// Dialer sends prepared messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer implements ports.EmailSender with gomail.
type SMTPMailer struct {
	dialer Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.FromEmail == "" {
		return nil, errors.New("smtp: host and from address are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return NewSMTPMailerWithDialer(gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password), cfg.FromName, cfg.FromEmail), nil
}

func NewSMTPMailerWithDialer(d Dialer, fromName, fromEmail string) *SMTPMailer {
	from := (&mail.Address{Name: fromName, Address: fromEmail}).String()
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) SendEmail(ctx context.Context, msg ports.EmailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("smtp: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp: send %q: %w", msg.Subject, err)
	}
	return nil
}
