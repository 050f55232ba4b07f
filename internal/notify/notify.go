// Package notify delivers run-outcome emails. Notification failures are
// reported to the caller but are never worth aborting a run over, so the
// mailer logs and returns instead of panicking on any path.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/config"
)

// Mailer sends plain-text notifications over SMTP.
type Mailer struct {
	cfg    config.NotifyConfig
	logger *zap.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a mailer. A disabled config yields a mailer whose Send
// is a no-op.
func NewMailer(cfg config.NotifyConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger.Named("notify"),
		send:   smtp.SendMail,
	}
}

// Enabled reports whether notifications are configured.
func (m *Mailer) Enabled() bool { return m.cfg.Enabled }

// Send delivers one message. Recipients are the comma-separated addresses
// from the config.
func (m *Mailer) Send(subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Debug("Notifications disabled, dropping message.",
			zap.String("subject", subject))
		return nil
	}

	recipients := splitRecipients(m.cfg.To)
	if len(recipients) == 0 {
		return fmt.Errorf("no notification recipients configured")
	}

	msg := buildMessage(m.cfg.From, recipients, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := m.send(addr, auth, m.cfg.From, recipients, msg); err != nil {
		m.logger.Error("Failed to send notification.",
			zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("sending notification: %w", err)
	}
	m.logger.Info("Notification sent.",
		zap.String("subject", subject), zap.Int("recipients", len(recipients)))
	return nil
}

func splitRecipients(to string) []string {
	var out []string
	for _, part := range strings.Split(to, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
