package adapter

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

// DateRange is the horizon a digest covers, inclusive on both ends.
type DateRange struct {
	From calendar.Date
	To   calendar.Date
}

// DigestRenderer produces the digest document. The output format is opaque
// to the core; the current implementation prints an HTML template to PDF.
type DigestRenderer interface {
	RenderPDF(ctx context.Context, events []*model.Event, userName string, r DateRange) ([]byte, error)
}
