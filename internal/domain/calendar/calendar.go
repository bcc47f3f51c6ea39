// Package calendar implements the "human day" convention used everywhere
// dates are derived from the wall clock: a day does not roll over at
// midnight but at a configurable early-morning hour, so someone typing
// "today" at 00:30 still means the previous calendar date.
package calendar

import (
	"fmt"
	"time"
)

// DefaultRolloverHour is the local hour before which the current moment is
// still attributed to the previous calendar date.
const DefaultRolloverHour = 5

// Date is a calendar date with no time zone attached. It is always
// interpreted in the owning user's local human day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the date at midnight UTC, the canonical form used for
// storage and range comparisons.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

func (d Date) Equal(o Date) bool { return d == o }

func (d Date) IsZero() bool { return d == Date{} }

// String formats the date as ISO 8601 (YYYY-MM-DD).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses an ISO 8601 date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ClockTime is a time of day in canonical 24-hour form.
type ClockTime struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM:SS, the canonical storage form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute)
}

// Format12h renders the time for chat replies, e.g. "4:00 PM".
func (c ClockTime) Format12h() string {
	ampm := "AM"
	h := c.Hour
	if h >= 12 {
		ampm = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, c.Minute, ampm)
}

// ParseClockTime parses the canonical HH:MM:SS (or HH:MM) form.
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// Clock converts wall-clock time into local human days. It is the only
// component allowed to look at the system clock for date math.
type Clock struct {
	loc      *time.Location
	rollover int
	now      func() time.Time
}

func NewClock(loc *time.Location, rolloverHour int) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if rolloverHour < 0 || rolloverHour > 23 {
		rolloverHour = DefaultRolloverHour
	}
	return &Clock{loc: loc, rollover: rolloverHour, now: time.Now}
}

// NewFixedClock returns a Clock frozen at t. Test helper.
func NewFixedClock(t time.Time, rolloverHour int) *Clock {
	c := NewClock(t.Location(), rolloverHour)
	c.now = func() time.Time { return t }
	return c
}

// Now returns the current time in the configured location.
func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// HumanToday returns the human day the current moment belongs to.
func (c *Clock) HumanToday() Date { return c.HumanDayAt(c.now()) }

// HumanDayAt returns the human day t belongs to: local times strictly
// before the rollover hour count as the previous calendar date.
func (c *Clock) HumanDayAt(t time.Time) Date {
	local := t.In(c.loc)
	d := DateOf(local)
	if local.Hour() < c.rollover {
		d = d.AddDays(-1)
	}
	return d
}

func (c *Clock) Location() *time.Location { return c.loc }
