package contact

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMailNotConfigured is returned by SMTPMailer when no SMTP host is set.
var ErrMailNotConfigured = errors.New("smtp host not configured")

// Email is an outgoing notification.
type Email struct {
	Subject string
	Body    string
	From    string
	To      []string
	ReplyTo string
}

// Mailer delivers an Email or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
}

// SMTPMailer sends mail through an SMTP relay, authenticating with PLAIN
// auth when a user is configured.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail, now: time.Now}
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	if m.cfg.Host == "" {
		return ErrMailNotConfigured
	}
	if len(e.To) == 0 {
		return errors.New("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.sendMail(addr, auth, e.From, e.To, m.compose(e)); err != nil {
		return fmt.Errorf("smtp send via %s: %w", addr, err)
	}
	return nil
}

func (m *SMTPMailer) compose(e Email) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k + ": " + headerValue(v) + "\r\n")
	}
	header("From", e.From)
	header("To", strings.Join(e.To, ", "))
	if e.ReplyTo != "" {
		header("Reply-To", e.ReplyTo)
	}
	header("Subject", e.Subject)
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(e.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

// headerValue strips line breaks so submitted values cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, e Email) error {
	m.logger.Info("Email (console backend)",
		zap.String("from", e.From),
		zap.Strings("to", e.To),
		zap.String("reply_to", e.ReplyTo),
		zap.String("subject", e.Subject),
		zap.String("body", e.Body))
	return nil
}
