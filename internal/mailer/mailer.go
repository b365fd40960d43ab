// Package mailer sends purchase-order mail over SMTP.
package mailer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	mail "gopkg.in/mail.v2"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	FromName string
}

type Attachment struct {
	Path string
	Name string
}

type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message with the given SMTP settings.
type Sender interface {
	Send(ctx context.Context, cfg Config, msg Message) error
}

type SMTPSender struct {
	timeout time.Duration
}

func NewSMTPSender(timeout time.Duration) *SMTPSender {
	return &SMTPSender{timeout: timeout}
}

func (s *SMTPSender) Send(ctx context.Context, cfg Config, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := Build(cfg, msg)
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	if s.timeout > 0 {
		d.Timeout = s.timeout
	}
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return nil
}

// Build assembles the MIME message: plain text with an optional HTML alternative.
func Build(cfg Config, msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetAddressHeader("From", cfg.User, cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	for _, a := range msg.Attachments {
		name := a.Name
		if name == "" {
			name = filepath.Base(a.Path)
		}
		m.Attach(a.Path, mail.Rename(name))
	}
	return m
}
