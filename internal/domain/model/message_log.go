package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "in"
	DirectionOutbound MessageDirection = "out"
)

// Actions recorded on the audit trail.
const (
	ActionReceived       = "message_received"
	ActionEventsCreated  = "events_created"
	ActionQueryAnswered  = "query_answered"
	ActionUnrecognized   = "unrecognized"
	ActionRateLimited    = "rate_limited"
	ActionDigestWhatsApp = "digest_sent_whatsapp"
	ActionDigestEmail    = "digest_sent_email"
	ActionReminderSent   = "reminder_sent"
)

// MessageLog is the raw audit trail. Every inbound message gets a row
// regardless of parse outcome; delivery attempts append rows too.
type MessageLog struct {
	ID        string
	UserID    string // empty until the sender is resolved
	Phone     string
	Direction MessageDirection
	Body      string
	Action    string
	CreatedAt time.Time
}

func NewMessageLog(userID, phone string, dir MessageDirection, body, action string) *MessageLog {
	return &MessageLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Phone:     phone,
		Direction: dir,
		Body:      body,
		Action:    action,
		CreatedAt: time.Now(),
	}
}
