package repository

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/model"
)

type MessageLogRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.MessageLog) error
}
