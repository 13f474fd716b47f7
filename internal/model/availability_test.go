package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestAvailabilityValidate(t *testing.T) {
	assert.NoError(t, NewWeeklyAvailability(time.Monday, "09:00", "17:00").Validate())
	assert.NoError(t, NewSpecificAvailability("2026-03-02", "00:00", "24:00", false).Validate())

	bad := NewWeeklyAvailability(time.Monday, "17:00", "09:00")
	assert.Error(t, bad.Validate())

	bad = NewSpecificAvailability("03/02/2026", "09:00", "10:00", true)
	assert.Error(t, bad.Validate())

	bad = NewWeeklyAvailability(time.Monday, "9am", "10:00")
	assert.Error(t, bad.Validate())

	bad = NewWeeklyAvailability(time.Monday, "09:00", "10:00")
	bad.DayOfWeek = 7
	assert.Error(t, bad.Validate())
}

func TestResolveDaySpecificOverridesWeekly(t *testing.T) {
	rules := []*CalendarAvailability{
		NewWeeklyAvailability(time.Monday, "09:00", "17:00"),
		NewSpecificAvailability("2026-03-02", "13:00", "15:00", true),
		NewWeeklyAvailability(time.Tuesday, "09:00", "17:00"),
	}

	sched, err := ResolveDay(monday, rules)
	require.NoError(t, err)
	assert.True(t, sched.Restricted)
	require.Len(t, sched.Available, 1)
	assert.Equal(t, at(13, 0), sched.Available[0].Start)

	assert.True(t, sched.Allows(at(13, 0), at(14, 0)))
	assert.False(t, sched.Allows(at(9, 0), at(10, 0)))
}

func TestResolveDayWithoutRulesIsOpen(t *testing.T) {
	sched, err := ResolveDay(monday, []*CalendarAvailability{
		NewWeeklyAvailability(time.Friday, "09:00", "17:00"),
	})
	require.NoError(t, err)
	assert.False(t, sched.Restricted)
	assert.True(t, sched.Allows(at(22, 0), at(23, 0)))
}

func TestBlockedWindowRejects(t *testing.T) {
	rules := []*CalendarAvailability{
		NewSpecificAvailability("2026-03-02", "12:00", "13:00", false),
	}
	sched, err := ResolveDay(monday, rules)
	require.NoError(t, err)

	assert.False(t, sched.Allows(at(12, 30), at(13, 30)))
	assert.True(t, sched.Allows(at(14, 0), at(15, 0)))
}

func TestFreeSlots(t *testing.T) {
	rules := []*CalendarAvailability{
		NewWeeklyAvailability(time.Monday, "09:00", "17:00"),
	}
	sched, err := ResolveDay(monday, rules)
	require.NoError(t, err)

	busy := []Window{
		{Start: at(10, 0), End: at(11, 0)},
		{Start: at(11, 30), End: at(12, 0)},
	}
	slots := sched.FreeSlots(monday, busy, time.Hour)

	require.Len(t, slots, 2)
	assert.Equal(t, Window{Start: at(9, 0), End: at(10, 0)}, slots[0])
	assert.Equal(t, Window{Start: at(12, 0), End: at(17, 0)}, slots[1])
}
