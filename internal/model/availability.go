package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AvailabilityType string

const (
	AvailabilitySpecific AvailabilityType = "specific"
	AvailabilityWeekly   AvailabilityType = "weekly"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// CalendarAvailability is either a one-off window on Date or a recurring
// window on DayOfWeek (0 = Sunday). Available=false blocks the window.
type CalendarAvailability struct {
	ID        string           `json:"id"`
	Type      AvailabilityType `json:"type"`
	Date      string           `json:"date,omitempty"`
	DayOfWeek int              `json:"day_of_week"`
	StartTime string           `json:"start_time"`
	EndTime   string           `json:"end_time"`
	Available bool             `json:"available"`
	Notes     string           `json:"notes"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewWeeklyAvailability(day time.Weekday, start, end string) *CalendarAvailability {
	now := time.Now()
	return &CalendarAvailability{
		ID:        uuid.New().String(),
		Type:      AvailabilityWeekly,
		DayOfWeek: int(day),
		StartTime: start,
		EndTime:   end,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewSpecificAvailability(date, start, end string, available bool) *CalendarAvailability {
	now := time.Now()
	return &CalendarAvailability{
		ID:        uuid.New().String(),
		Type:      AvailabilitySpecific,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Available: available,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *CalendarAvailability) Validate() error {
	switch c.Type {
	case AvailabilitySpecific:
		if _, err := time.Parse(DateLayout, c.Date); err != nil {
			return invalid("date must be formatted as YYYY-MM-DD")
		}
	case AvailabilityWeekly:
		if c.DayOfWeek < 0 || c.DayOfWeek > 6 {
			return invalid("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
		}
		c.Date = ""
	default:
		return invalid("type must be %q or %q", AvailabilitySpecific, AvailabilityWeekly)
	}
	start, err := parseClock(c.StartTime)
	if err != nil {
		return invalid("start_time: %v", err)
	}
	end, err := parseClock(c.EndTime)
	if err != nil {
		return invalid("end_time: %v", err)
	}
	if end <= start {
		return invalid("end_time must be after start_time")
	}
	return nil
}

// AppliesTo reports whether the rule covers the given calendar day.
func (c *CalendarAvailability) AppliesTo(day time.Time) bool {
	if c.Type == AvailabilitySpecific {
		return c.Date == day.Format(DateLayout)
	}
	return c.DayOfWeek == int(day.Weekday())
}

// Window resolves the rule's clock times on day, in day's location.
func (c *CalendarAvailability) Window(day time.Time) (Window, error) {
	start, err := parseClock(c.StartTime)
	if err != nil {
		return Window{}, err
	}
	end, err := parseClock(c.EndTime)
	if err != nil {
		return Window{}, err
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Window{
		Start: midnight.Add(time.Duration(start) * time.Minute),
		End:   midnight.Add(time.Duration(end) * time.Minute),
	}, nil
}

type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// DaySchedule is the outcome of resolving availability rules for one day.
// Restricted is false when no rule applies, meaning the day is open.
type DaySchedule struct {
	Restricted bool
	Available  []Window
	Blocked    []Window
}

// ResolveDay picks the rules for day: date-specific rules win over weekly
// rules for the same weekday.
func ResolveDay(day time.Time, rules []*CalendarAvailability) (DaySchedule, error) {
	var specific, weekly []*CalendarAvailability
	for _, r := range rules {
		if !r.AppliesTo(day) {
			continue
		}
		if r.Type == AvailabilitySpecific {
			specific = append(specific, r)
		} else {
			weekly = append(weekly, r)
		}
	}
	chosen := weekly
	if len(specific) > 0 {
		chosen = specific
	}

	var sched DaySchedule
	for _, r := range chosen {
		w, err := r.Window(day)
		if err != nil {
			return DaySchedule{}, fmt.Errorf("availability %s: %w", r.ID, err)
		}
		sched.Restricted = true
		if r.Available {
			sched.Available = append(sched.Available, w)
		} else {
			sched.Blocked = append(sched.Blocked, w)
		}
	}
	sortWindows(sched.Available)
	sortWindows(sched.Blocked)
	return sched, nil
}

// Allows reports whether [start,end) fits in an available window and touches
// no blocked one. A day with only blocking rules is open outside of them.
func (d DaySchedule) Allows(start, end time.Time) bool {
	for _, b := range d.Blocked {
		if b.Start.Before(end) && b.End.After(start) {
			return false
		}
	}
	if len(d.Available) == 0 {
		return true
	}
	for _, w := range d.Available {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}

// FreeSlots subtracts blocked windows and busy windows from the day's
// available windows and keeps the gaps at least minDuration long.
func (d DaySchedule) FreeSlots(day time.Time, busy []Window, minDuration time.Duration) []Window {
	base := d.Available
	if len(base) == 0 {
		midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		base = []Window{{Start: midnight, End: midnight.AddDate(0, 0, 1)}}
	}

	cut := append(append([]Window{}, d.Blocked...), busy...)
	sortWindows(cut)

	var free []Window
	for _, w := range base {
		pieces := []Window{w}
		for _, c := range cut {
			pieces = subtract(pieces, c)
		}
		free = append(free, pieces...)
	}
	sortWindows(free)

	out := free[:0]
	for _, w := range free {
		if w.Duration() >= minDuration && w.Duration() > 0 {
			out = append(out, w)
		}
	}
	return out
}

func subtract(pieces []Window, c Window) []Window {
	var out []Window
	for _, p := range pieces {
		if !c.Start.Before(p.End) || !c.End.After(p.Start) {
			out = append(out, p)
			continue
		}
		if c.Start.After(p.Start) {
			out = append(out, Window{Start: p.Start, End: c.Start})
		}
		if c.End.Before(p.End) {
			out = append(out, Window{Start: c.End, End: p.End})
		}
	}
	return out
}

func sortWindows(ws []Window) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })
}

// parseClock converts "HH:MM" to minutes after midnight. "24:00" is accepted
// as end of day.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return 24 * 60, nil
	}
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a HH:MM time", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
