package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentValidate(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	a := NewAppointment("client-1", "Site visit", start, start.Add(time.Hour))
	assert.NoError(t, a.Validate())

	a.EndTime = start
	assert.True(t, errors.Is(a.Validate(), ErrValidation))

	a = NewAppointment("", "Site visit", start, start.Add(time.Hour))
	assert.Error(t, a.Validate())
}

func TestAppointmentLifecycle(t *testing.T) {
	start := time.Now().Add(time.Hour)
	a := NewAppointment("client-1", "Visit", start, start.Add(time.Hour))

	assert.Error(t, a.TransitionTo(AppointmentCompleted))
	require.NoError(t, a.TransitionTo(AppointmentConfirmed))
	require.NoError(t, a.TransitionTo(AppointmentInProgress))
	require.NoError(t, a.TransitionTo(AppointmentCompleted))
	assert.Error(t, a.TransitionTo(AppointmentCancelled))

	b := NewAppointment("client-1", "Visit", start, start.Add(time.Hour))
	require.NoError(t, b.TransitionTo(AppointmentCancelled))
	assert.False(t, b.Active())
	assert.Error(t, b.TransitionTo(AppointmentScheduled))
}

func TestAppointmentOverlaps(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := NewAppointment("c", "Visit", start, start.Add(time.Hour))

	assert.True(t, a.Overlaps(start.Add(30*time.Minute), start.Add(90*time.Minute)))
	assert.False(t, a.Overlaps(start.Add(time.Hour), start.Add(2*time.Hour)))
	assert.False(t, a.Overlaps(start.Add(-time.Hour), start))
}
