package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type calendarService struct {
	availabilityRepo repository.AvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
	logger           *logger.Logger
}

func NewCalendarService(availabilityRepo repository.AvailabilityRepository, appointmentRepo repository.AppointmentRepository, logger *logger.Logger) CalendarService {
	return &calendarService{
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		logger:           logger,
	}
}

func (s *calendarService) CreateAvailability(ctx context.Context, in AvailabilityInput) (*model.CalendarAvailability, error) {
	rule := model.NewWeeklyAvailability(time.Sunday, "", "")
	in.apply(rule)
	trimAvailability(rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := s.availabilityRepo.Create(ctx, rule); err != nil {
		s.logger.Error("Failed to create availability:", err)
		return nil, err
	}
	s.logger.Info("Created availability:", rule.ID, rule.Type)
	return rule, nil
}

func trimAvailability(a *model.CalendarAvailability) {
	a.Date = strings.TrimSpace(a.Date)
	a.StartTime = strings.TrimSpace(a.StartTime)
	a.EndTime = strings.TrimSpace(a.EndTime)
}

func (s *calendarService) GetAvailability(ctx context.Context, availabilityID string) (*model.CalendarAvailability, error) {
	return s.availabilityRepo.FindByID(ctx, availabilityID)
}

func (s *calendarService) ListAvailability(ctx context.Context) ([]*model.CalendarAvailability, error) {
	return s.availabilityRepo.FindAll(ctx)
}

func (s *calendarService) UpdateAvailability(ctx context.Context, availabilityID string, in AvailabilityInput) (*model.CalendarAvailability, error) {
	rule, err := s.availabilityRepo.FindByID(ctx, availabilityID)
	if err != nil {
		return nil, err
	}

	in.apply(rule)
	trimAvailability(rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	rule.UpdatedAt = time.Now()

	if err := s.availabilityRepo.Update(ctx, rule); err != nil {
		s.logger.Error("Failed to update availability:", err)
		return nil, err
	}
	s.logger.Info("Updated availability:", rule.ID)
	return rule, nil
}

func (s *calendarService) DeleteAvailability(ctx context.Context, availabilityID string) error {
	if err := s.availabilityRepo.Delete(ctx, availabilityID); err != nil {
		s.logger.Error("Failed to delete availability:", err)
		return err
	}
	s.logger.Info("Deleted availability:", availabilityID)
	return nil
}

// FreeSlots lists the gaps of at least duration left on day once blocked
// windows and live appointments are removed.
func (s *calendarService) FreeSlots(ctx context.Context, day time.Time, duration time.Duration) ([]model.Window, error) {
	if duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", model.ErrValidation)
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	rules, err := s.availabilityRepo.FindForDay(ctx, midnight)
	if err != nil {
		return nil, err
	}
	sched, err := model.ResolveDay(midnight, rules)
	if err != nil {
		return nil, err
	}

	booked, err := s.appointmentRepo.FindOverlapping(ctx, midnight, midnight.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	busy := make([]model.Window, 0, len(booked))
	for _, a := range booked {
		busy = append(busy, model.Window{Start: a.StartTime.In(day.Location()), End: a.EndTime.In(day.Location())})
	}

	slots := sched.FreeSlots(midnight, busy, duration)
	if slots == nil {
		slots = []model.Window{}
	}
	return slots, nil
}
