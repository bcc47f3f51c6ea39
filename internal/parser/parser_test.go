package parser

import (
	"testing"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

func TestParseLineCreate(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		offset   int
		time     string // canonical HH:MM:00, "" for all-day
		category model.EventCategory
	}{
		{"meeting tomorrow with time", "meeting tomorrow 4pm with Raj", 1, "16:00:00", model.CategoryMeeting},
		{"flight today", "flight to Mumbai today 6:30am", 0, "06:30:00", model.CategoryFlight},
		{"day after tomorrow wins over tomorrow", "hotel checkin day after tomorrow", 2, "", model.CategoryHotel},
		{"deadline without time", "report deadline tomorrow", 1, "", model.CategoryDeadline},
		{"call with pm time", "call mom today 9 pm", 0, "21:00:00", model.CategoryCall},
		{"midnight boundary", "flight tomorrow 12:00am", 1, "00:00:00", model.CategoryFlight},
		{"noon boundary", "flight tomorrow 12:00pm", 1, "12:00:00", model.CategoryFlight},
		{"time only defaults to task", "today 5pm", 0, "17:00:00", model.CategoryTask},
		{"meeting beats call in priority order", "call about the meeting tomorrow", 1, "", model.CategoryMeeting},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := ParseLine(c.in)
			if res.Create == nil {
				t.Fatalf("ParseLine(%q): expected Create, got %+v", c.in, res)
			}
			cr := res.Create
			if cr.Offset != c.offset {
				t.Errorf("offset = %d, want %d", cr.Offset, c.offset)
			}
			if c.time == "" {
				if cr.Time != nil {
					t.Errorf("time = %v, want none", cr.Time)
				}
			} else if cr.Time == nil || cr.Time.String() != c.time {
				t.Errorf("time = %v, want %s", cr.Time, c.time)
			}
			if cr.Category != c.category {
				t.Errorf("category = %s, want %s", cr.Category, c.category)
			}
		})
	}
}

func TestParseLineQueryPrecedence(t *testing.T) {
	queries := []struct {
		in       string
		from, to int
	}{
		{"today", 0, 0},
		{"tomorrow", 1, 1},
		{"day after tomorrow", 2, 2},
		{"next 7", 0, 7},
		{"show my schedule", 0, 7},
		{"upcoming meetings", 0, 7}, // query wins over the category keyword
		{"list everything", 0, 7},
	}
	for _, q := range queries {
		res := ParseLine(q.in)
		if res.Query == nil {
			t.Errorf("ParseLine(%q): expected Query, got %+v", q.in, res)
			continue
		}
		if res.Query.FromOffset != q.from || res.Query.ToOffset != q.to {
			t.Errorf("ParseLine(%q) range = (%d,%d), want (%d,%d)",
				q.in, res.Query.FromOffset, res.Query.ToOffset, q.from, q.to)
		}
	}
}

func TestParseLineRejections(t *testing.T) {
	t.Run("ambiguous 24h time is not extracted", func(t *testing.T) {
		res := ParseLine("meeting tomorrow at 16:00")
		if res.Create == nil {
			t.Fatal("expected Create")
		}
		if res.Create.Time != nil {
			t.Errorf("time = %v, want none (no am/pm suffix)", res.Create.Time)
		}
	})

	t.Run("event intent without date is skipped not saved", func(t *testing.T) {
		res := ParseLine("flight")
		if res.Create == nil || res.Create.Offset >= 0 {
			t.Fatalf("expected dateless Create marker, got %+v", res)
		}
	})

	t.Run("plain chatter is unrecognized", func(t *testing.T) {
		res := ParseLine("hello how are you")
		if res.Query != nil || res.Create != nil {
			t.Errorf("expected unrecognized, got %+v", res)
		}
	})

	t.Run("13pm does not match", func(t *testing.T) {
		res := ParseLine("meeting tomorrow 13pm")
		if res.Create == nil {
			t.Fatal("expected Create")
		}
		// "3pm" inside "13pm" must not be pulled out: word boundary.
		if res.Create.Time != nil {
			t.Errorf("time = %v, want none", res.Create.Time)
		}
	})
}

func TestTimeRoundTrip(t *testing.T) {
	cases := map[string]string{
		"12:00am": "12:00 AM",
		"12:00pm": "12:00 PM",
		"1:05pm":  "1:05 PM",
		"11:59pm": "11:59 PM",
		"9am":     "9:00 AM",
	}
	for in, want := range cases {
		res := ParseLine("meeting today " + in)
		if res.Create == nil || res.Create.Time == nil {
			t.Errorf("no time extracted from %q", in)
			continue
		}
		if got := res.Create.Time.Format12h(); got != want {
			t.Errorf("format12h(parse(%q)) = %q, want %q", in, got, want)
		}
	}
}

func TestParseMessageMultiLine(t *testing.T) {
	msg := ParseMessage("meeting tomorrow 4pm\nflight\nrandom chatter\nhotel day after tomorrow")
	if msg.Query != nil {
		t.Fatalf("unexpected query: %+v", msg.Query)
	}
	if len(msg.Creates) != 2 {
		t.Fatalf("creates = %d, want 2", len(msg.Creates))
	}
	if msg.Creates[0].Category != model.CategoryMeeting || msg.Creates[1].Category != model.CategoryHotel {
		t.Errorf("unexpected categories: %+v", msg.Creates)
	}
	if len(msg.Skipped) != 1 || msg.Skipped[0] != "flight" {
		t.Errorf("skipped = %v, want [flight]", msg.Skipped)
	}
	if msg.Unrecognized {
		t.Error("message with creates must not be unrecognized")
	}
}

func TestParseMessageLeadingQuery(t *testing.T) {
	msg := ParseMessage("today")
	if msg.Query == nil || msg.Query.FromOffset != 0 || msg.Query.ToOffset != 0 {
		t.Fatalf("expected today query, got %+v", msg)
	}

	empty := ParseMessage("hi there\n\n")
	if !empty.Unrecognized {
		t.Errorf("expected unrecognized, got %+v", empty)
	}
}

func TestOffsetsResolveAgainstHumanToday(t *testing.T) {
	today, _ := calendar.ParseDate("2025-01-10")
	res := ParseLine("meeting tomorrow 4pm with Raj")
	if res.Create == nil {
		t.Fatal("expected Create")
	}
	if got := today.AddDays(res.Create.Offset).String(); got != "2025-01-11" {
		t.Errorf("resolved date = %s, want 2025-01-11", got)
	}
	if res.Create.Time.String() != "16:00:00" {
		t.Errorf("time = %s, want 16:00:00", res.Create.Time)
	}
}
