// Package parser turns one line of free chat text into a typed intent:
// a calendar query, a new-event request, or nothing. It is deliberately
// keyword-driven; anything beyond these heuristics belongs to the optional
// AI extractor, not here.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

// Query asks for events in a date range expressed as offsets from the
// human today, inclusive.
type Query struct {
	FromOffset int
	ToOffset   int
}

// Create describes one event to save. Offset is days from human today.
// Time is nil for all-day items.
type Create struct {
	Offset   int
	Time     *calendar.ClockTime
	Category model.EventCategory
	Title    string
}

// LineResult is the outcome for a single line. Both fields nil means the
// line was not recognized.
type LineResult struct {
	Query  *Query
	Create *Create
}

// Message is the outcome for a whole (possibly multi-line) message.
// Skipped holds lines that looked like event requests but carried no date;
// they are not errors, but the handler reports them.
type Message struct {
	Query        *Query
	Creates      []Create
	Skipped      []string
	Unrecognized bool
}

// Query classification wins over event creation: "today" alone is a
// question, not an event.
var queryTriggers = []string{"schedule", "next", "upcoming", "show", "list"}

var exactQueries = map[string]Query{
	"today":              {0, 0},
	"tomorrow":           {1, 1},
	"day after tomorrow": {2, 2},
	"next 7":             {0, 7},
}

const defaultQueryHorizon = 7

// Category keywords in fixed priority order; first containment wins.
var categoryKeywords = []struct {
	word     string
	category model.EventCategory
}{
	{"meeting", model.CategoryMeeting},
	{"flight", model.CategoryFlight},
	{"hotel", model.CategoryHotel},
	{"deadline", model.CategoryDeadline},
	{"call", model.CategoryCall},
}

// timePattern matches a 12-hour clock reference: hour 1-12, optional :MM,
// mandatory am/pm. Input without an am/pm suffix is ambiguous 24-hour text
// and is rejected rather than guessed.
var timePattern = regexp.MustCompile(`\b(1[0-2]|0?[1-9])(?::([0-5][0-9]))?\s*(am|pm)\b`)

var spaces = regexp.MustCompile(`\s+`)

// ParseLine classifies one line of raw text.
func ParseLine(line string) LineResult {
	norm := strings.ToLower(strings.TrimSpace(line))
	if norm == "" {
		return LineResult{}
	}

	if q, ok := classifyQuery(norm); ok {
		return LineResult{Query: &q}
	}

	clock := extractTime(norm)
	category, hasCategory := matchCategory(norm)
	if clock == nil && !hasCategory {
		return LineResult{}
	}
	if !hasCategory {
		category = model.CategoryTask
	}

	offset, ok := dateOffset(norm)
	if !ok {
		// Event intent without a date cannot be saved; caller treats the
		// line as skipped rather than failed.
		return LineResult{Create: &Create{Offset: -1, Time: clock, Category: category}}
	}

	return LineResult{Create: &Create{
		Offset:   offset,
		Time:     clock,
		Category: category,
		Title:    cleanTitle(line),
	}}
}

// ParseMessage processes a multi-line message line by line. A leading query
// line makes the whole message a query; otherwise every line independently
// yields zero or one Create.
func ParseMessage(text string) Message {
	var msg Message
	first := true
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		res := ParseLine(line)
		if first && res.Query != nil {
			msg.Query = res.Query
			return msg
		}
		first = false
		switch {
		case res.Create == nil:
			// unrecognized line, ignore
		case res.Create.Offset < 0:
			msg.Skipped = append(msg.Skipped, line)
		default:
			msg.Creates = append(msg.Creates, *res.Create)
		}
	}
	msg.Unrecognized = msg.Query == nil && len(msg.Creates) == 0 && len(msg.Skipped) == 0
	return msg
}

func classifyQuery(norm string) (Query, bool) {
	if q, ok := exactQueries[norm]; ok {
		return q, true
	}
	for _, trigger := range queryTriggers {
		if strings.Contains(norm, trigger) {
			return Query{0, defaultQueryHorizon}, true
		}
	}
	return Query{}, false
}

// dateOffset resolves the relative day keyword in fixed priority order.
// "day after tomorrow" must be checked before its substring "tomorrow".
func dateOffset(norm string) (int, bool) {
	switch {
	case strings.Contains(norm, "day after tomorrow"):
		return 2, true
	case strings.Contains(norm, "tomorrow"):
		return 1, true
	case strings.Contains(norm, "today"):
		return 0, true
	}
	return 0, false
}

// extractTime converts the first 12-hour reference to canonical 24-hour
// form: 12am -> 00, 12pm -> 12, other pm hours add 12.
func extractTime(norm string) *calendar.ClockTime {
	m := timePattern.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch {
	case m[3] == "am" && hour == 12:
		hour = 0
	case m[3] == "pm" && hour != 12:
		hour += 12
	}
	return &calendar.ClockTime{Hour: hour, Minute: minute}
}

func matchCategory(norm string) (model.EventCategory, bool) {
	for _, kw := range categoryKeywords {
		if strings.Contains(norm, kw.word) {
			return kw.category, true
		}
	}
	return "", false
}

func cleanTitle(line string) string {
	title := spaces.ReplaceAllString(strings.TrimSpace(line), " ")
	if len(title) > 200 {
		title = title[:200]
	}
	return title
}
