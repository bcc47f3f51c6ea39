package ai

import (
	"testing"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

var today = calendar.Date{Year: 2025, Month: 1, Day: 10}

func TestDecodeExtraction(t *testing.T) {
	content := `{
		"type": "meeting",
		"title": "Meeting with Rahul",
		"date": "2025-01-13",
		"time": "10:00",
		"person": "Rahul",
		"location": "Bangalore",
		"description": null,
		"priority": "high"
	}`
	got, err := decodeExtraction(content, today)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Category != model.CategoryMeeting || got.Person != "Rahul" {
		t.Errorf("wrong fields: %+v", got)
	}
	if got.Date.String() != "2025-01-13" {
		t.Errorf("date = %s", got.Date)
	}
	if got.Time == nil || got.Time.Hour != 10 || got.Time.Minute != 0 {
		t.Errorf("time = %v", got.Time)
	}
	if got.Priority != model.PriorityHigh {
		t.Errorf("priority = %s", got.Priority)
	}
}

func TestDecodeExtractionNullType(t *testing.T) {
	got, err := decodeExtraction(`{"type": null}`, today)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for non-event message, got %+v", got)
	}
}

func TestDecodeExtractionRejectsUnknownType(t *testing.T) {
	_, err := decodeExtraction(`{"type": "party", "title": "x", "date": "2025-01-11"}`, today)
	if err == nil {
		t.Fatal("unknown category accepted")
	}
}

func TestDecodeExtractionDefaultsPriority(t *testing.T) {
	got, err := decodeExtraction(`{"type": "task", "title": "buy milk", "date": "tomorrow", "priority": "asap"}`, today)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Priority != model.PriorityMedium {
		t.Errorf("priority = %s, want medium fallback", got.Priority)
	}
	if got.Date.String() != "2025-01-11" {
		t.Errorf("relative date not resolved: %s", got.Date)
	}
}

func TestResolveDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"today", "2025-01-10"},
		{"tomorrow", "2025-01-11"},
		{"day after tomorrow", "2025-01-12"},
		{"2025-02-01", "2025-02-01"},
		{"", "2025-01-10"},
	}
	for _, c := range cases {
		got, err := resolveDate(c.in, today)
		if err != nil {
			t.Errorf("resolveDate(%q): %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("resolveDate(%q) = %s, want %s", c.in, got, c.want)
		}
	}
	if _, err := resolveDate("next blursday", today); err == nil {
		t.Error("nonsense date accepted")
	}
}
