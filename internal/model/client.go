package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(name, email, phone string) *Client {
	now := time.Now()
	return &Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return invalid("email %q is not a valid address", c.Email)
		}
	}
	return nil
}
