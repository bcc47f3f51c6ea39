// Package telegram pages operators about failed digest jobs through a
// Telegram bot. It is strictly an ops channel; users never see it.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
)

var _ adapter.AlertNotifier = (*AlertBot)(nil)

type AlertBot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

func NewAlertBot(token string, chatID int64, logger *zerolog.Logger) (*AlertBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &AlertBot{bot: bot, chatID: chatID, log: logger}, nil
}

// Alert is best effort: a failed page is logged and dropped, never
// propagated to the caller.
func (a *AlertBot) Alert(ctx context.Context, text string) {
	msg := tgbotapi.NewMessage(a.chatID, text)
	if _, err := a.bot.Send(msg); err != nil {
		a.log.Warn().Err(err).Msg("operator alert failed")
	}
}

// NoopNotifier is used when no alert channel is configured.
type NoopNotifier struct{}

var _ adapter.AlertNotifier = (*NoopNotifier)(nil)

func (NoopNotifier) Alert(ctx context.Context, text string) {}
