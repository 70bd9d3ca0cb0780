package scheduling

import (
	"fmt"
	"time"
)

// overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Every conflict and buffer decision in this package goes through
// this one predicate so boundary semantics cannot drift between the
// provider, room and equipment checks.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Slot is a bookable interval of exactly the requested duration.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// BusinessHours is the daily window the slot search considers open for
// scheduling, interpreted in Location.
type BusinessHours struct {
	Open     ClockTime
	Close    ClockTime
	Location *time.Location
}

// DefaultBusinessHours is the 08:00-18:00 local window.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Open:     ClockTime{Hour: 8},
		Close:    ClockTime{Hour: 18},
		Location: time.Local,
	}
}

// ParseBusinessHours builds a window from "HH:MM" strings.
func ParseBusinessHours(open, close string, loc *time.Location) (BusinessHours, error) {
	o, err := time.Parse("15:04", open)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("parsing opening time %q: %w", open, err)
	}
	c, err := time.Parse("15:04", close)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("parsing closing time %q: %w", close, err)
	}
	if !o.Before(c) {
		return BusinessHours{}, fmt.Errorf("opening time %s must be earlier than closing time %s", open, close)
	}
	if loc == nil {
		loc = time.Local
	}
	return BusinessHours{
		Open:     ClockTime{Hour: o.Hour(), Minute: o.Minute()},
		Close:    ClockTime{Hour: c.Hour(), Minute: c.Minute()},
		Location: loc,
	}, nil
}

func (b BusinessHours) location() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

// OpenAt returns the opening instant on t's calendar day.
func (b BusinessHours) OpenAt(t time.Time) time.Time {
	local := t.In(b.location())
	return time.Date(local.Year(), local.Month(), local.Day(), b.Open.Hour, b.Open.Minute, 0, 0, b.location())
}

// CloseAt returns the closing instant on t's calendar day.
func (b BusinessHours) CloseAt(t time.Time) time.Time {
	local := t.In(b.location())
	return time.Date(local.Year(), local.Month(), local.Day(), b.Close.Hour, b.Close.Minute, 0, 0, b.location())
}
