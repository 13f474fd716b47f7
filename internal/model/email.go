package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Email struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ExternalID string    `json:"external_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
	CategoryID string    `json:"category_id"`
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	Processed  bool      `json:"processed"`
	Responded  bool      `json:"responded"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewEmail(userID, externalID, from, subject, body string, receivedAt time.Time) *Email {
	now := time.Now()
	if receivedAt.IsZero() {
		receivedAt = now
	}
	return &Email{
		ID:         uuid.New().String(),
		UserID:     userID,
		ExternalID: externalID,
		From:       from,
		Subject:    subject,
		Body:       body,
		ReceivedAt: receivedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (e *Email) Validate() error {
	if strings.TrimSpace(e.Subject) == "" && strings.TrimSpace(e.Body) == "" {
		return invalid("subject or body is required")
	}
	if strings.TrimSpace(e.From) == "" {
		return invalid("sender is required")
	}
	return nil
}

// SenderDomain extracts the lowercased domain of the From header. It accepts
// both bare addresses and "Name <addr>" forms.
func (e *Email) SenderDomain() string {
	return AddressDomain(e.From)
}

func AddressDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(addr[at+1:], "> "))
}
