package model

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuotationStatus string

const (
	QuotationDraft     QuotationStatus = "draft"
	QuotationSent      QuotationStatus = "sent"
	QuotationAccepted  QuotationStatus = "accepted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationCompleted QuotationStatus = "completed"
)

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationDraft:    {QuotationSent},
	QuotationSent:     {QuotationAccepted, QuotationRejected},
	QuotationAccepted: {QuotationCompleted},
}

func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationCompleted:
		return true
	}
	return false
}

type QuotationItem struct {
	ID          string  `json:"id"`
	ServiceID   string  `json:"service_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type Quotation struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	ClientID    string          `json:"client_id"`
	ClientName  string          `json:"client_name"`
	ClientEmail string          `json:"client_email"`
	ClientPhone string          `json:"client_phone"`
	Items       []QuotationItem `json:"items"`
	Subtotal    float64         `json:"subtotal"`
	Discount    float64         `json:"discount"` // percent
	Total       float64         `json:"total"`
	Status      QuotationStatus `json:"status"`
	Notes       string          `json:"notes"`
	ValidUntil  *time.Time      `json:"valid_until"`
	SentAt      *time.Time      `json:"sent_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewQuotation(clientName string, items []QuotationItem, discount float64) *Quotation {
	now := time.Now()
	id := uuid.New().String()
	q := &Quotation{
		ID:         id,
		Number:     fmt.Sprintf("Q-%s-%s", now.Format("20060102"), strings.ToUpper(id[:6])),
		ClientName: strings.TrimSpace(clientName),
		Items:      items,
		Discount:   discount,
		Status:     QuotationDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	q.Recalculate()
	return q
}

// Recalculate derives item totals, subtotal and total from quantities,
// unit prices and the discount percentage. Amounts are rounded to cents.
func (q *Quotation) Recalculate() {
	subtotal := 0.0
	for i := range q.Items {
		if q.Items[i].ID == "" {
			q.Items[i].ID = uuid.New().String()
		}
		q.Items[i].Total = RoundCents(q.Items[i].Quantity * q.Items[i].UnitPrice)
		subtotal += q.Items[i].Total
	}
	q.Subtotal = RoundCents(subtotal)
	q.Total = RoundCents(q.Subtotal - q.Subtotal*q.Discount/100)
}

func (q *Quotation) Validate() error {
	if q.ClientName == "" {
		return invalid("client_name is required")
	}
	if q.ClientEmail != "" {
		if _, err := mail.ParseAddress(q.ClientEmail); err != nil {
			return invalid("client_email %q is not a valid address", q.ClientEmail)
		}
	}
	if len(q.Items) == 0 {
		return invalid("at least one item is required")
	}
	if q.Discount < 0 || q.Discount > 100 {
		return invalid("discount must be between 0 and 100")
	}
	if !q.Status.Valid() {
		return invalid("unknown status %q", q.Status)
	}
	for i, item := range q.Items {
		if strings.TrimSpace(item.Description) == "" {
			return invalid("item %d: description is required", i+1)
		}
		if item.Quantity <= 0 {
			return invalid("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice < 0 {
			return invalid("item %d: unit_price must not be negative", i+1)
		}
	}
	return nil
}

// Editable reports whether items, discount and client data may still change.
func (q *Quotation) Editable() bool {
	return q.Status == QuotationDraft
}

// TransitionTo moves the quotation along draft→sent→accepted/rejected→completed.
func (q *Quotation) TransitionTo(next QuotationStatus) error {
	for _, allowed := range quotationTransitions[q.Status] {
		if allowed == next {
			now := time.Now()
			if next == QuotationSent {
				q.SentAt = &now
			}
			q.Status = next
			q.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("%w: quotation %s cannot go from %s to %s", ErrInvalidTransition, q.Number, q.Status, next)
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
