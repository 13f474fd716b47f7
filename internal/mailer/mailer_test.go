package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/logger"
	"business-admin/internal/service"
)

func TestBuildMessage(t *testing.T) {
	m := buildMessage("office@example.com", service.MailMessage{
		To:       "client@example.com",
		Subject:  "Quotation Q-1",
		Body:     "plain text",
		HTMLBody: "<p>html</p>",
	})

	assert.Equal(t, []string{"office@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"client@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Quotation Q-1"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "plain text")
	assert.Contains(t, buf.String(), "text/html")
}

func TestLogMailerNeverFails(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logger.NewWithWriter(&buf))

	err := m.Send(context.Background(), service.MailMessage{To: "a@b.com", Subject: "hi"})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "a@b.com")
}

func TestMockMailerRecordsOnlyDelivered(t *testing.T) {
	m := NewMockMailer()
	require.NoError(t, m.Send(context.Background(), service.MailMessage{To: "one@example.com"}))

	m.SendFunc = func(ctx context.Context, msg service.MailMessage) error {
		return errors.New("relay down")
	}
	assert.Error(t, m.Send(context.Background(), service.MailMessage{To: "two@example.com"}))

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "one@example.com", sent[0].To)
}
