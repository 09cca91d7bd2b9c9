package notify

import (
	"fmt"
	"io"
	"log"
	"net/smtp"
	"strings"
)

// Mailer delivers notification mail. Callers treat delivery as best effort
// and never fail a business operation on a mail error.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through a single SMTP relay.
type SMTPMailer struct {
	addr   string // host:port
	from   string
	auth   smtp.Auth
	logger *log.Logger
}

func NewSMTPMailer(addr, from, username, password string, logger *log.Logger) *SMTPMailer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{addr: addr, from: from, auth: auth, logger: logger}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Printf("mail sent to %s: %s", to, subject)
	return nil
}

// Disabled drops all mail. Used when no SMTP relay is configured.
type Disabled struct {
	logger *log.Logger
}

func NewDisabled(logger *log.Logger) *Disabled {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Disabled{logger: logger}
}

func (d *Disabled) Send(to, subject, _ string) error {
	d.logger.Printf("mail disabled, dropping %q for %s", subject, to)
	return nil
}
