package services

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/staynest/staynest-backend/internal/config"
)

// Mailer is the outbound email collaborator: send or fail, nothing else.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through a plain SMTP relay (Gmail app password in the
// original deployment).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %w", cfg.Port, err)
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}, nil
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return d.DialAndSend(msg)
}
