package repository

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/calendar"
)

// DigestLogRepository is the idempotency ledger port.
type DigestLogRepository interface {
	// LoadDelivered returns the set of user IDs already served on day.
	LoadDelivered(ctx context.Context, tx Tx, day calendar.Date) (map[string]struct{}, error)
	// MarkDelivered records (user, day). Duplicate marks are ignored; the
	// unique constraint on (user_id, day) is the arbiter, so two racing
	// writers cannot double-record a delivery.
	MarkDelivered(ctx context.Context, tx Tx, userID string, day calendar.Date) error
}
