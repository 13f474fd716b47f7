package mailer

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/gomail.v2"

	"business-admin/internal/logger"
	"business-admin/internal/service"
)

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

// NewSMTPMailer delivers mail through the given SMTP relay.
func NewSMTPMailer(host string, port int, username, password, from string, logger *logger.Logger) service.Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg service.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(buildMessage(m.from, msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	m.logger.Info("Sent mail to", msg.To, "subject:", msg.Subject)
	return nil
}

func buildMessage(from string, msg service.MailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	return m
}

type logMailer struct {
	logger *logger.Logger
}

// NewLogMailer is used when SMTP is not configured: messages are logged and
// reported as delivered.
func NewLogMailer(logger *logger.Logger) service.Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, msg service.MailMessage) error {
	m.logger.Info("SMTP not configured, would send mail to", msg.To, "subject:", msg.Subject)
	return nil
}

// MockMailer records messages for tests.
type MockMailer struct {
	SendFunc func(ctx context.Context, msg service.MailMessage) error

	mu   sync.Mutex
	sent []service.MailMessage
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, msg service.MailMessage) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *MockMailer) Sent() []service.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.MailMessage(nil), m.sent...)
}
