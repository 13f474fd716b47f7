package service

import (
	"time"

	"business-admin/internal/model"
)

// Inputs use pointers so that updates only touch the fields the caller sent.
// A nil slice means "unchanged"; an empty one clears the list.

type CategoryInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Color       *string  `json:"color"`
	Active      *bool    `json:"active"`
	Keywords    []string `json:"keywords"`
	Patterns    []string `json:"patterns"`
	Domains     []string `json:"domains"`
}

func (in CategoryInput) apply(c *model.Category) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if in.Keywords != nil {
		c.Keywords = in.Keywords
	}
	if in.Patterns != nil {
		c.Patterns = in.Patterns
	}
	if in.Domains != nil {
		c.Domains = in.Domains
	}
}

type EmailInput struct {
	ExternalID string     `json:"external_id"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	ReceivedAt *time.Time `json:"received_at"`
}

// EmailUpdate changes workflow flags. A non-nil CategoryID is a manual
// override; an empty string detaches the email from its category.
type EmailUpdate struct {
	Processed  *bool   `json:"processed"`
	Responded  *bool   `json:"responded"`
	Archived   *bool   `json:"archived"`
	CategoryID *string `json:"category_id"`
}

type RecategorizeResult struct {
	Processed int `json:"processed"`
	Changed   int `json:"changed"`
}

type ServiceInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Unit          *string  `json:"unit"`
	EstimatedTime *int     `json:"estimated_time"`
	Active        *bool    `json:"active"`
}

func (in ServiceInput) apply(s *model.Service) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.Unit != nil {
		s.Unit = *in.Unit
	}
	if in.EstimatedTime != nil {
		s.EstimatedTime = *in.EstimatedTime
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
}

type ClientInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (in ClientInput) apply(c *model.Client) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, in.Name)
	set(&c.Email, in.Email)
	set(&c.Phone, in.Phone)
	set(&c.Company, in.Company)
	set(&c.Address, in.Address)
	set(&c.Notes, in.Notes)
}

// QuotationItemInput may reference a catalog service; its name and price
// fill a blank description and a missing unit price.
type QuotationItemInput struct {
	ServiceID   string   `json:"service_id"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
}

type QuotationInput struct {
	ClientID    *string              `json:"client_id"`
	ClientName  *string              `json:"client_name"`
	ClientEmail *string              `json:"client_email"`
	ClientPhone *string              `json:"client_phone"`
	Items       []QuotationItemInput `json:"items"`
	Discount    *float64             `json:"discount"`
	Notes       *string              `json:"notes"`
	ValidUntil  *time.Time           `json:"valid_until"`
}

// touchesDraftFields reports whether the input changes anything that is
// frozen once a quotation leaves draft.
func (in QuotationInput) touchesDraftFields() bool {
	return in.ClientID != nil || in.ClientName != nil || in.ClientEmail != nil ||
		in.ClientPhone != nil || in.Items != nil || in.Discount != nil
}

type AppointmentInput struct {
	ClientID    *string    `json:"client_id"`
	QuotationID *string    `json:"quotation_id"`
	ServiceID   *string    `json:"service_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Notes       *string    `json:"notes"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (in AppointmentInput) apply(a *model.Appointment) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.ClientID, in.ClientID)
	set(&a.QuotationID, in.QuotationID)
	set(&a.ServiceID, in.ServiceID)
	set(&a.Title, in.Title)
	set(&a.Description, in.Description)
	set(&a.Location, in.Location)
	set(&a.Notes, in.Notes)
	if in.StartTime != nil {
		a.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		a.EndTime = *in.EndTime
	}
}

type AvailabilityInput struct {
	Type      *model.AvailabilityType `json:"type"`
	Date      *string                 `json:"date"`
	DayOfWeek *int                    `json:"day_of_week"`
	StartTime *string                 `json:"start_time"`
	EndTime   *string                 `json:"end_time"`
	Available *bool                   `json:"available"`
	Notes     *string                 `json:"notes"`
}

func (in AvailabilityInput) apply(a *model.CalendarAvailability) {
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Date != nil {
		a.Date = *in.Date
	}
	if in.DayOfWeek != nil {
		a.DayOfWeek = *in.DayOfWeek
	}
	if in.StartTime != nil {
		a.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		a.EndTime = *in.EndTime
	}
	if in.Available != nil {
		a.Available = *in.Available
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
}
