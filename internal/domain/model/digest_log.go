package model

import (
	"time"

	"whatsapp-calendar-assistant/internal/domain/calendar"
)

// DigestLog is the idempotency ledger: one row per (user, human day) for
// which a digest reached the user on at least one channel. Rows are written
// only after a successful delivery and never updated, so their presence is
// what stops a re-run from sending twice.
type DigestLog struct {
	ID        string
	UserID    string
	Day       calendar.Date
	CreatedAt time.Time
}
