package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

var _ repository.MessageLogRepository = (*messageLogRepo)(nil)

type messageLogRepo struct {
	pool *pgxpool.Pool
}

func NewMessageLogRepo(pool *pgxpool.Pool) *messageLogRepo {
	return &messageLogRepo{pool: pool}
}

func (r *messageLogRepo) Append(ctx context.Context, tx repository.Tx, entry *model.MessageLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const q = `
INSERT INTO message_log (id, user_id, phone, direction, body, action, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := execSQL(ctx, r.pool, tx, q,
		entry.ID, entry.UserID, entry.Phone, string(entry.Direction), entry.Body, entry.Action, entry.CreatedAt)
	return err
}
