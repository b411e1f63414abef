package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/config"
)

// Mailer delivers outbound email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer constructs the mailer.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send delivers a plain-text message. With no SMTP host configured the
// message is logged and dropped, which keeps development setups working.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		m.logger.Info("mail delivery skipped, no smtp host configured",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := buildMessage(m.cfg.From, to, subject, body)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
