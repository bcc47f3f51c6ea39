package usecase

import (
	"context"
	"fmt"
	"time"

	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
	"whatsapp-calendar-assistant/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase sends one-off WhatsApp reminders for events whose
// reminder moment has passed. An event is marked only after a successful
// send, so failed sends retry on the next sweep.
type ReminderUseCase interface {
	SweepDue(ctx context.Context) (sent int, err error)
}

const reminderBatchSize = 20

type reminderUC struct {
	events repository.EventRepository
	users  repository.UserRepository
	audit  repository.MessageLogRepository
	chat   adapter.ChatSender
	log    *zerolog.Logger
}

func NewReminderUseCase(
	events repository.EventRepository,
	users repository.UserRepository,
	audit repository.MessageLogRepository,
	chat adapter.ChatSender,
	logger *zerolog.Logger,
) *reminderUC {
	compLog := logger.With().Str("component", "ReminderSweep").Logger()
	return &reminderUC{events: events, users: users, audit: audit, chat: chat, log: &compLog}
}

func (r *reminderUC) SweepDue(ctx context.Context) (int, error) {
	due, err := r.events.ListDueReminders(ctx, repository.NoTX, time.Now(), reminderBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	sent := 0
	for _, event := range due {
		user, err := r.users.FindByID(ctx, repository.NoTX, event.UserID)
		if err != nil {
			r.log.Error().Err(err).Str("event_id", event.ID).Msg("reminder owner lookup failed")
			continue
		}
		if !user.WhatsAppEnabled || user.PhoneNumber == "" {
			// Unreachable user; mark anyway so the sweep does not spin
			// on the same row forever.
			if err := r.events.MarkReminderSent(ctx, repository.NoTX, event.ID); err != nil {
				r.log.Error().Err(err).Str("event_id", event.ID).Msg("reminder mark failed")
			}
			continue
		}

		if _, err := r.chat.SendMessage(ctx, user.PhoneNumber, reminderText(event), ""); err != nil {
			r.log.Error().Err(err).Str("event_id", event.ID).Msg("reminder send failed")
			metrics.IncReminder(false)
			continue
		}
		metrics.IncReminder(true)
		if err := r.events.MarkReminderSent(ctx, repository.NoTX, event.ID); err != nil {
			r.log.Error().Err(err).Str("event_id", event.ID).Msg("reminder mark failed")
		}
		entry := model.NewMessageLog(user.ID, user.PhoneNumber, model.DirectionOutbound, event.Title, model.ActionReminderSent)
		if err := r.audit.Append(ctx, repository.NoTX, entry); err != nil {
			r.log.Warn().Err(err).Str("event_id", event.ID).Msg("reminder log write failed")
		}
		sent++
	}
	return sent, nil
}

func reminderText(e *model.Event) string {
	text := fmt.Sprintf("⏰ Reminder\n\n%s\n%s", e.Title, e.Date)
	if e.Time != nil {
		text += " at " + e.Time.Format12h()
	}
	return text
}
