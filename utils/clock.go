// utils/clock.go
package utils

import (
	"fmt"
	"time"
)

// Clock produces the current business date and time in one fixed IANA
// timezone. All date math in the scheduler goes through a Clock so the
// day boundary never depends on where the process happens to run.
type Clock struct {
	loc *time.Location
}

func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc}, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now is the current time in the business timezone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today is the current business date at local midnight.
func (c *Clock) Today() time.Time {
	return BeginningOfDay(c.Now())
}

// StartOfTodayUTC is the UTC instant at which the current business date
// began. Ledger timestamps are stored in UTC, so dedup queries compare
// against this value.
func (c *Clock) StartOfTodayUTC() time.Time {
	return c.Today().UTC()
}

// ParseClockTime parses an "HH:MM" string into minutes since midnight.
func ParseClockTime(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM): %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesOfDay returns how many minutes of t's day have elapsed.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
