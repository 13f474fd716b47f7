package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/model"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

// monday is 2030-01-07, a Monday.
var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func booking(clientID, title string, start, end time.Time) service.AppointmentInput {
	return service.AppointmentInput{
		ClientID:  ptr(clientID),
		Title:     ptr(title),
		StartTime: ptr(start),
		EndTime:   ptr(end),
	}
}

func TestCreateAppointmentNeedsExistingClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appointments.CreateAppointment(ctx, booking("ghost", "Visit", at(9, 0), at(10, 0)))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.appointments.CreateAppointment(ctx, service.AppointmentInput{Title: ptr("Visit")})
	assert.ErrorIs(t, err, model.ErrValidation)

	client := f.client(t, "Dan", "")
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Backwards", at(10, 0), at(9, 0)))
	assert.ErrorIs(t, err, model.ErrValidation)

	a, err := f.appointments.CreateAppointment(ctx, booking(client.ID, "Visit", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentScheduled, a.Status)
}

func TestAppointmentOverlapIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "Eve", "")

	first, err := f.appointments.CreateAppointment(ctx, booking(client.ID, "First", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Clash", at(9, 30), at(10, 30)))
	assert.ErrorIs(t, err, repository.ErrConflict)

	// touching windows do not overlap
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Next", at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// moving an appointment inside its own slot is fine
	_, err = f.appointments.UpdateAppointment(ctx, first.ID, service.AppointmentInput{EndTime: ptr(at(9, 45))})
	require.NoError(t, err)

	_, err = f.appointments.UpdateStatus(ctx, first.ID, model.AppointmentCancelled)
	require.NoError(t, err)
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Replacement", at(9, 0), at(9, 45)))
	assert.NoError(t, err)
}

func TestAppointmentRespectsAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "Fay", "")

	_, err := f.calendar.CreateAvailability(ctx, service.AvailabilityInput{
		Type:      ptr(model.AvailabilityWeekly),
		DayOfWeek: ptr(int(time.Monday)),
		StartTime: ptr("09:00"),
		EndTime:   ptr("12:00"),
	})
	require.NoError(t, err)

	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Too late", at(11, 30), at(12, 30)))
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Morning", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	// a date-specific rule replaces the weekly one
	_, err = f.calendar.CreateAvailability(ctx, service.AvailabilityInput{
		Type:      ptr(model.AvailabilitySpecific),
		Date:      ptr("2030-01-07"),
		StartTime: ptr("13:00"),
		EndTime:   ptr("18:00"),
	})
	require.NoError(t, err)
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Afternoon", at(14, 0), at(15, 0)))
	require.NoError(t, err)

	// Tuesday has no rules, so it is open
	tuesday := monday.AddDate(0, 0, 1)
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Evening", tuesday.Add(20*time.Hour), tuesday.Add(21*time.Hour)))
	assert.NoError(t, err)
}

func TestOvernightAppointmentChecksEveryDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "Gus", "")

	_, err := f.calendar.CreateAvailability(ctx, service.AvailabilityInput{
		Type:      ptr(model.AvailabilityWeekly),
		DayOfWeek: ptr(int(time.Tuesday)),
		StartTime: ptr("09:00"),
		EndTime:   ptr("17:00"),
	})
	require.NoError(t, err)

	// Monday is open but Tuesday only opens at 09:00
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Overnight", at(23, 0), at(34, 0)))
	assert.ErrorIs(t, err, repository.ErrConflict)

	// ending exactly at midnight stays within Monday
	_, err = f.appointments.CreateAppointment(ctx, booking(client.ID, "Late", at(22, 0), at(24, 0)))
	assert.NoError(t, err)
}

func TestAppointmentEndTimeFromService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "Gil", "")
	svc, err := f.catalog.CreateService(ctx, service.ServiceInput{Name: ptr("Inspection"), EstimatedTime: ptr(90)})
	require.NoError(t, err)

	a, err := f.appointments.CreateAppointment(ctx, service.AppointmentInput{
		ClientID:  ptr(client.ID),
		ServiceID: ptr(svc.ID),
		Title:     ptr("Inspection"),
		StartTime: ptr(at(8, 0)),
	})
	require.NoError(t, err)
	assert.Equal(t, at(9, 30), a.EndTime)
}

func TestAppointmentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "Hal", "")
	a, err := f.appointments.CreateAppointment(ctx, booking(client.ID, "Job", at(9, 0), at(10, 0)))
	require.NoError(t, err)

	_, err = f.appointments.UpdateStatus(ctx, a.ID, model.AppointmentCompleted)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	for _, next := range []model.AppointmentStatus{model.AppointmentConfirmed, model.AppointmentInProgress, model.AppointmentCompleted} {
		a, err = f.appointments.UpdateStatus(ctx, a.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, a.Status)
	}

	_, err = f.appointments.UpdateStatus(ctx, a.ID, model.AppointmentCancelled)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.appointments.UpdateAppointment(ctx, a.ID, service.AppointmentInput{Title: ptr("Renamed")})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	page, err := f.appointments.ListAppointments(ctx, repository.AppointmentFilter{Status: model.AppointmentCompleted}, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = f.appointments.ListAppointments(ctx, repository.AppointmentFilter{Status: "unknown"}, repository.ListOptions{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	withEmail := f.client(t, "Ivy", "ivy@example.com")
	withoutEmail := f.client(t, "Jon", "")
	now := at(8, 0)

	soon, err := f.appointments.CreateAppointment(ctx, booking(withEmail.ID, "Soon", at(8, 10), at(8, 30)))
	require.NoError(t, err)
	_, err = f.appointments.CreateAppointment(ctx, booking(withoutEmail.ID, "Also soon", at(8, 40), at(8, 55)))
	require.NoError(t, err)
	later, err := f.appointments.CreateAppointment(ctx, booking(withEmail.ID, "Later", at(12, 0), at(13, 0)))
	require.NoError(t, err)

	sent, err := f.appointments.SendReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	mails := f.mailer.Sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "ivy@example.com", mails[0].To)
	assert.Contains(t, mails[0].Subject, "Soon")

	stored, err := f.appointments.GetAppointment(ctx, soon.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderSent)
	stored, err = f.appointments.GetAppointment(ctx, later.ID)
	require.NoError(t, err)
	assert.False(t, stored.ReminderSent)

	sent, err = f.appointments.SendReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, sent)
}
