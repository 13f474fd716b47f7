package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

// ReminderLead is how long before an appointment its reminder goes out.
const ReminderLead = time.Hour

type appointmentService struct {
	appointmentRepo  repository.AppointmentRepository
	clientRepo       repository.ClientRepository
	quotationRepo    repository.QuotationRepository
	serviceRepo      repository.ServiceRepository
	availabilityRepo repository.AvailabilityRepository
	mailer           Mailer
	logger           *logger.Logger
}

func NewAppointmentService(repos *repository.Set, mailer Mailer, logger *logger.Logger) AppointmentService {
	return &appointmentService{
		appointmentRepo:  repos.Appointments,
		clientRepo:       repos.Clients,
		quotationRepo:    repos.Quotations,
		serviceRepo:      repos.Services,
		availabilityRepo: repos.Availability,
		mailer:           mailer,
		logger:           logger,
	}
}

func (s *appointmentService) CreateAppointment(ctx context.Context, in AppointmentInput) (*model.Appointment, error) {
	a := model.NewAppointment("", "", time.Time{}, time.Time{})
	in.apply(a)
	trimAppointment(a)

	if err := s.checkReferences(ctx, a); err != nil {
		return nil, err
	}
	if err := s.defaultEndTime(ctx, a, in); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSchedule(ctx, a); err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Create(ctx, a); err != nil {
		s.logger.Error("Failed to create appointment:", err)
		return nil, err
	}
	s.logger.Info("Created appointment:", a.ID, "at", a.StartTime.Format(time.RFC3339))
	return a, nil
}

func trimAppointment(a *model.Appointment) {
	a.ClientID = strings.TrimSpace(a.ClientID)
	a.QuotationID = strings.TrimSpace(a.QuotationID)
	a.ServiceID = strings.TrimSpace(a.ServiceID)
	a.Title = strings.TrimSpace(a.Title)
}

// defaultEndTime derives a missing end time from the linked service's
// estimated duration.
func (s *appointmentService) defaultEndTime(ctx context.Context, a *model.Appointment, in AppointmentInput) error {
	if in.EndTime != nil || a.ServiceID == "" || a.StartTime.IsZero() || !a.EndTime.IsZero() {
		return nil
	}
	svc, err := s.serviceRepo.FindByID(ctx, a.ServiceID)
	if err != nil {
		return err
	}
	if svc.EstimatedTime > 0 {
		a.EndTime = a.StartTime.Add(time.Duration(svc.EstimatedTime) * time.Minute)
	}
	return nil
}

// checkReferences verifies that the client, quotation and service the
// appointment points to exist.
func (s *appointmentService) checkReferences(ctx context.Context, a *model.Appointment) error {
	if a.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", model.ErrValidation)
	}
	if _, err := s.clientRepo.FindByID(ctx, a.ClientID); err != nil {
		return referenceError("client", a.ClientID, err)
	}
	if a.QuotationID != "" {
		if _, err := s.quotationRepo.FindByID(ctx, a.QuotationID); err != nil {
			return referenceError("quotation", a.QuotationID, err)
		}
	}
	if a.ServiceID != "" {
		if _, err := s.serviceRepo.FindByID(ctx, a.ServiceID); err != nil {
			return referenceError("service", a.ServiceID, err)
		}
	}
	return nil
}

func referenceError(kind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return err
}

// checkSchedule rejects windows that collide with another live appointment
// or fall outside the availability configured for the day.
func (s *appointmentService) checkSchedule(ctx context.Context, a *model.Appointment) error {
	overlapping, err := s.appointmentRepo.FindOverlapping(ctx, a.StartTime, a.EndTime)
	if err != nil {
		return err
	}
	for _, other := range overlapping {
		if other.ID != a.ID {
			return fmt.Errorf("overlaps appointment %q at %s: %w", other.Title, other.StartTime.Format(time.RFC3339), repository.ErrConflict)
		}
	}

	// each calendar day the window touches is checked against its own rules
	start := a.StartTime
	for day := startOfDay(start); day.Before(a.EndTime); day = day.AddDate(0, 0, 1) {
		partStart, partEnd := start, a.EndTime
		if partStart.Before(day) {
			partStart = day
		}
		if next := day.AddDate(0, 0, 1); partEnd.After(next) {
			partEnd = next
		}

		rules, err := s.availabilityRepo.FindForDay(ctx, day)
		if err != nil {
			return err
		}
		sched, err := model.ResolveDay(day, rules)
		if err != nil {
			return err
		}
		if sched.Restricted && !sched.Allows(partStart, partEnd) {
			return fmt.Errorf("%s to %s is outside the available hours: %w",
				partStart.Format(time.RFC3339), partEnd.Format(time.RFC3339), repository.ErrConflict)
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *appointmentService) GetAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	return s.appointmentRepo.FindByID(ctx, appointmentID)
}

func (s *appointmentService) ListAppointments(ctx context.Context, filter repository.AppointmentFilter, opts repository.ListOptions) (*repository.Page[*model.Appointment], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filter.Status)
	}
	return s.appointmentRepo.List(ctx, filter, opts.Normalized(repository.AppointmentSortFields))
}

func (s *appointmentService) UpdateAppointment(ctx context.Context, appointmentID string, in AppointmentInput) (*model.Appointment, error) {
	a, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AppointmentCompleted || a.Status == model.AppointmentCancelled {
		return nil, fmt.Errorf("%w: appointment is %s and can no longer be edited", model.ErrInvalidTransition, a.Status)
	}

	oldStart, oldEnd := a.StartTime, a.EndTime
	in.apply(a)
	trimAppointment(a)

	if err := s.checkReferences(ctx, a); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	rescheduled := !a.StartTime.Equal(oldStart) || !a.EndTime.Equal(oldEnd)
	if rescheduled {
		if err := s.checkSchedule(ctx, a); err != nil {
			return nil, err
		}
		a.ReminderSent = false
	}
	a.UpdatedAt = time.Now()

	if err := s.appointmentRepo.Update(ctx, a); err != nil {
		s.logger.Error("Failed to update appointment:", err)
		return nil, err
	}
	s.logger.Info("Updated appointment:", a.ID)
	return a, nil
}

func (s *appointmentService) DeleteAppointment(ctx context.Context, appointmentID string) error {
	if err := s.appointmentRepo.Delete(ctx, appointmentID); err != nil {
		s.logger.Error("Failed to delete appointment:", err)
		return err
	}
	s.logger.Info("Deleted appointment:", appointmentID)
	return nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, appointmentID string, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	a, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	previous := a.Status
	if err := a.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.appointmentRepo.Update(ctx, a); err != nil {
		s.logger.Error("Failed to update appointment status:", err)
		return nil, err
	}
	s.logger.Info("Appointment", a.ID, "moved from", previous, "to", a.Status)
	return a, nil
}

func (s *appointmentService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.appointmentRepo.FindDueForReminder(ctx, now, now.Add(ReminderLead))
	if err != nil {
		return 0, fmt.Errorf("failed to find due appointments: %w", err)
	}

	sent := 0
	for _, a := range due {
		client, err := s.clientRepo.FindByID(ctx, a.ClientID)
		if err != nil {
			s.logger.Warn("Skipping reminder, client lookup failed:", a.ID, err)
			continue
		}
		if client.Email != "" {
			msg := MailMessage{
				To:      client.Email,
				Subject: fmt.Sprintf("Reminder: %s", a.Title),
				Body:    renderReminder(client, a),
			}
			if err := s.mailer.Send(ctx, msg); err != nil {
				s.logger.Error("Failed to send reminder:", a.ID, err)
				continue
			}
			sent++
		}

		a.ReminderSent = true
		a.UpdatedAt = time.Now()
		if err := s.appointmentRepo.Update(ctx, a); err != nil {
			s.logger.Error("Failed to flag reminder as sent:", a.ID, err)
		}
	}
	if sent > 0 {
		s.logger.Info("Sent appointment reminders:", sent)
	}
	return sent, nil
}

func renderReminder(client *model.Client, a *model.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", client.Name)
	fmt.Fprintf(&b, "This is a reminder of %q on %s from %s to %s.\n",
		a.Title, a.StartTime.Format("Monday, January 2"), a.StartTime.Format(model.TimeOfDayLayout), a.EndTime.Format(model.TimeOfDayLayout))
	if a.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", a.Location)
	}
	return b.String()
}
