package mail

import (
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/escalation-service/internal/config"
)

// Mailer delivers plain-text notification emails. Callers treat delivery
// as best-effort; failures are logged, never retried here.
type Mailer interface {
	Send(to []string, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a Mailer over the configured SMTP relay.
func NewSMTPMailer(cfg config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(to []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
