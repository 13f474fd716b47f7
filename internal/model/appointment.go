package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled:  {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed:  {AppointmentInProgress, AppointmentCancelled},
	AppointmentInProgress: {AppointmentCompleted, AppointmentCancelled},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"client_id"`
	QuotationID  string            `json:"quotation_id"`
	ServiceID    string            `json:"service_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Location     string            `json:"location"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes"`
	ReminderSent bool              `json:"reminder_sent"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func NewAppointment(clientID, title string, start, end time.Time) *Appointment {
	now := time.Now()
	return &Appointment{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Title:     strings.TrimSpace(title),
		StartTime: start,
		EndTime:   end,
		Status:    AppointmentScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Appointment) Validate() error {
	if a.ClientID == "" {
		return invalid("client_id is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return invalid("title is required")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return invalid("start_time and end_time are required")
	}
	if !a.EndTime.After(a.StartTime) {
		return invalid("end_time must be after start_time")
	}
	if !a.Status.Valid() {
		return invalid("unknown status %q", a.Status)
	}
	return nil
}

// Active reports whether the appointment still occupies its time window.
func (a *Appointment) Active() bool {
	return a.Status != AppointmentCancelled
}

func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// TransitionTo moves the appointment along
// scheduled→confirmed→in_progress→completed, with cancellation allowed from
// every non-terminal state.
func (a *Appointment) TransitionTo(next AppointmentStatus) error {
	for _, allowed := range appointmentTransitions[a.Status] {
		if allowed == next {
			a.Status = next
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: appointment cannot go from %s to %s", ErrInvalidTransition, a.Status, next)
}
