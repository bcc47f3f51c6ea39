package calendar

import (
	"testing"
	"time"
)

func TestHumanDayRollover(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	clock := NewClock(loc, 5)

	day := func(hour, minute int) Date {
		return clock.HumanDayAt(time.Date(2025, 1, 10, hour, minute, 0, 0, loc))
	}

	t.Run("before rollover belongs to previous date", func(t *testing.T) {
		if got := day(4, 59); got.String() != "2025-01-09" {
			t.Errorf("04:59 = %s, want 2025-01-09", got)
		}
	})

	t.Run("at rollover belongs to current date", func(t *testing.T) {
		if got := day(5, 0); got.String() != "2025-01-10" {
			t.Errorf("05:00 = %s, want 2025-01-10", got)
		}
	})

	t.Run("rollover boundary is one day apart", func(t *testing.T) {
		before, after := day(4, 59), day(5, 0)
		if !before.AddDays(1).Equal(after) {
			t.Errorf("04:59=%s and 05:00=%s are not one day apart", before, after)
		}
	})

	t.Run("same date from rollover until midnight", func(t *testing.T) {
		if a, b := day(5, 0), day(23, 59); !a.Equal(b) {
			t.Errorf("05:00=%s and 23:59=%s differ", a, b)
		}
	})
}

func TestHumanDayCrossesMonth(t *testing.T) {
	clock := NewClock(time.UTC, 5)
	got := clock.HumanDayAt(time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC))
	if got.String() != "2025-02-28" {
		t.Errorf("march 1 02:00 = %s, want 2025-02-28", got)
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := NewFixedClock(at, 5)
	if got := clock.HumanToday().String(); got != "2025-01-10" {
		t.Errorf("HumanToday = %s, want 2025-01-10", got)
	}
	if !clock.Now().Equal(at) {
		t.Errorf("Now = %v, want %v", clock.Now(), at)
	}
}

func TestDateAddDaysAndParse(t *testing.T) {
	d, err := ParseDate("2025-01-30")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.AddDays(2).String(); got != "2025-02-01" {
		t.Errorf("AddDays(2) = %s, want 2025-02-01", got)
	}
	if !d.Before(d.AddDays(1)) {
		t.Error("expected date to sort before the next day")
	}
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestClockTime(t *testing.T) {
	cases := []struct {
		in      ClockTime
		canon   string
		twelveH string
	}{
		{ClockTime{0, 0}, "00:00:00", "12:00 AM"},
		{ClockTime{12, 0}, "12:00:00", "12:00 PM"},
		{ClockTime{16, 30}, "16:30:00", "4:30 PM"},
		{ClockTime{9, 5}, "09:05:00", "9:05 AM"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.canon {
			t.Errorf("String(%v) = %s, want %s", c.in, got, c.canon)
		}
		if got := c.in.Format12h(); got != c.twelveH {
			t.Errorf("Format12h(%v) = %s, want %s", c.in, got, c.twelveH)
		}
		back, err := ParseClockTime(c.canon)
		if err != nil || back != c.in {
			t.Errorf("ParseClockTime(%s) = %v, %v", c.canon, back, err)
		}
	}
	if _, err := ParseClockTime("25:00:00"); err == nil {
		t.Error("expected error for out-of-range hour")
	}
}
