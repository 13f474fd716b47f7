package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultServiceUnit = "unit"

// Service is an entry of the priced service catalog used in quotations.
type Service struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Unit          string    `json:"unit"`
	EstimatedTime int       `json:"estimated_time"` // minutes
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewService(name, description string, price float64, unit string, estimatedTime int) *Service {
	now := time.Now()
	if unit == "" {
		unit = DefaultServiceUnit
	}
	return &Service{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Description:   description,
		Price:         price,
		Unit:          unit,
		EstimatedTime: estimatedTime,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name is required")
	}
	if s.Price < 0 {
		return invalid("price must not be negative")
	}
	if s.EstimatedTime < 0 {
		return invalid("estimated_time must not be negative")
	}
	return nil
}
