package repository

import (
	"context"
	"time"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

type EventRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Event) error
	// QueryRange returns the user's events with from <= date <= to,
	// ordered by (date, time) ascending.
	QueryRange(ctx context.Context, tx Tx, userID string, from, to calendar.Date) ([]*model.Event, error)
	// ListUpcoming is QueryRange over [today, today+horizonDays] excluding
	// cancelled events; used by the digest worker, which never mutates.
	ListUpcoming(ctx context.Context, tx Tx, userID string, today calendar.Date, horizonDays int) ([]*model.Event, error)
	// ListDueReminders returns unsent reminders whose reminder_at <= now.
	ListDueReminders(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Event, error)
	MarkReminderSent(ctx context.Context, tx Tx, eventID string) error
	CountByCategory(ctx context.Context, tx Tx) (map[model.EventCategory]int, error)
}
