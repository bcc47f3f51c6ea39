package adapter

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

// ExtractedEvent is the structured result of an LLM extraction pass.
type ExtractedEvent struct {
	Category    model.EventCategory
	Title       string
	Date        calendar.Date
	Time        *calendar.ClockTime
	Person      string
	Location    string
	Description string
	Priority    model.EventPriority
}

// EventExtractor is the optional AI collaborator consulted only for
// messages the deterministic parser could not classify. A nil result with
// a nil error means the text is not event-related.
type EventExtractor interface {
	Extract(ctx context.Context, text string, today calendar.Date) (*ExtractedEvent, error)
}
