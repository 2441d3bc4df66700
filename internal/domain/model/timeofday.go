package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

// TimeOfDay is a wall-clock time without a date, used as the daily anchor
// for subscription checks.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses strict "HH:MM" input. Anything else, including
// out-of-range values like "25:99", is rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q is not HH:MM", domain.ErrInvalidArgument, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour out of range in %q", domain.ErrInvalidArgument, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute out of range in %q", domain.ErrInvalidArgument, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first instant strictly after now that falls on this
// time of day: today at HH:MM, or tomorrow if that has already passed.
func (t TimeOfDay) Next(now time.Time) time.Time {
	at := t.On(now)
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}
	return at
}

// On keeps the date of the given instant and replaces only the clock part.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}
