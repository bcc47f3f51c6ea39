package adapter

import "context"

// ChatSender delivers outbound WhatsApp messages. mediaURL, when non-empty,
// must be publicly fetchable by the provider.
type ChatSender interface {
	SendMessage(ctx context.Context, phone, body, mediaURL string) (messageID string, err error)
}

// Attachment is an in-memory file attached to an outbound email.
type Attachment struct {
	Filename string
	Content  []byte
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, html string, attachments []Attachment) (messageID string, err error)
}

// AlertNotifier pages an operator channel. Best effort; callers must not
// fail their own work when alerting fails.
type AlertNotifier interface {
	Alert(ctx context.Context, text string)
}
