package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Boundary errors. The service layer maps these onto the HTTP error
// taxonomy; inside this package they stay plain sentinels so the core has
// no transport awareness.
var (
	ErrInvalidTimezone      = errors.New("invalid timezone")
	ErrUnparsableTimestamp  = errors.New("unparsable timestamp")
	ErrDegenerateRecurrence = errors.New("degenerate recurrence")
)

// clock is a parsed time-of-day.
type clock struct {
	hour, minute, second int
}

// parseClock accepts HH:MM or HH:MM:SS.
func parseClock(raw string) (clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return clock{hour: t.Hour(), minute: t.Minute(), second: t.Second()}, nil
		}
	}
	return clock{}, fmt.Errorf("%w: %q", ErrUnparsableTimestamp, raw)
}

func (c clock) before(other clock) bool {
	if c.hour != other.hour {
		return c.hour < other.hour
	}
	if c.minute != other.minute {
		return c.minute < other.minute
	}
	return c.second < other.second
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableTimestamp, raw)
	}
	return t, nil
}

// ParseDateTime parses an ISO-8601 date-time with explicit offset or Z.
func ParseDateTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableTimestamp, raw)
	}
	return t, nil
}

// LoadLocation resolves an IANA timezone name, never guessing a default.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty timezone", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// midnight re-anchors the calendar date of t at 00:00 in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// dateOnly normalises t to its calendar date in UTC, the form instance
// dates and keys use.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// at combines the calendar date of day with a time-of-day in day's location.
func at(day time.Time, c clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, c.second, 0, day.Location())
}
