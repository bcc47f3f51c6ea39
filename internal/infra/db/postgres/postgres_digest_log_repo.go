package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

var _ repository.DigestLogRepository = (*digestLogRepo)(nil)

// digestLogRepo is the delivery ledger. The UNIQUE (user_id, day) constraint
// is the idempotency arbiter; MarkDelivered leans on ON CONFLICT DO NOTHING
// so a duplicate mark is a no-op rather than an error.
type digestLogRepo struct {
	pool *pgxpool.Pool
}

func NewDigestLogRepo(pool *pgxpool.Pool) *digestLogRepo {
	return &digestLogRepo{pool: pool}
}

func (r *digestLogRepo) LoadDelivered(ctx context.Context, tx repository.Tx, day calendar.Date) (map[string]struct{}, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT user_id FROM digest_log WHERE day = $1;`, day.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		out[userID] = struct{}{}
	}
	return out, rows.Err()
}

func (r *digestLogRepo) MarkDelivered(ctx context.Context, tx repository.Tx, userID string, day calendar.Date) error {
	const q = `
INSERT INTO digest_log (id, user_id, day, created_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id, day) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), userID, day.Time())
	return err
}
