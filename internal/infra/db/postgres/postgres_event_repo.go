package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

var _ repository.EventRepository = (*PostgresEventRepo)(nil)

// PostgresEventRepo stores events with the date as a plain DATE and the
// optional clock time as HH:MM:SS text. Neither carries a zone; the human
// day owns the interpretation.
type PostgresEventRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresEventRepo(pool *pgxpool.Pool) *PostgresEventRepo {
	return &PostgresEventRepo{pool: pool}
}

const eventColumns = `id, user_id, category, title, date, time, person, location, description,
       status, priority, raw_message, reminder_at, reminder_sent, created_at, updated_at`

func (r *PostgresEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	const q = `
INSERT INTO events (id, user_id, category, title, date, time, person, location, description,
                    status, priority, raw_message, reminder_at, reminder_sent, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  category=EXCLUDED.category,
  title=EXCLUDED.title,
  date=EXCLUDED.date,
  time=EXCLUDED.time,
  person=EXCLUDED.person,
  location=EXCLUDED.location,
  description=EXCLUDED.description,
  status=EXCLUDED.status,
  priority=EXCLUDED.priority,
  reminder_at=EXCLUDED.reminder_at,
  reminder_sent=EXCLUDED.reminder_sent,
  updated_at=EXCLUDED.updated_at;`

	var clock *string
	if e.Time != nil {
		s := e.Time.String()
		clock = &s
	}
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, string(e.Category), e.Title, e.Date.Time(), clock,
		e.Person, e.Location, e.Description, string(e.Status), string(e.Priority),
		e.RawMessage, e.ReminderAt, e.ReminderSent, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *PostgresEventRepo) QueryRange(ctx context.Context, tx repository.Tx, userID string, from, to calendar.Date) ([]*model.Event, error) {
	const q = `
SELECT ` + eventColumns + `
  FROM events
 WHERE user_id=$1 AND date >= $2 AND date <= $3
 ORDER BY date, time NULLS FIRST, created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PostgresEventRepo) ListUpcoming(ctx context.Context, tx repository.Tx, userID string, today calendar.Date, horizonDays int) ([]*model.Event, error) {
	const q = `
SELECT ` + eventColumns + `
  FROM events
 WHERE user_id=$1 AND date >= $2 AND date <= $3 AND status <> 'cancelled'
 ORDER BY date, time NULLS FIRST, created_at;`
	to := today.AddDays(horizonDays)
	rows, err := queryRows(ctx, r.pool, tx, q, userID, today.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PostgresEventRepo) ListDueReminders(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Event, error) {
	const q = `
SELECT ` + eventColumns + `
  FROM events
 WHERE reminder_at IS NOT NULL AND reminder_sent = FALSE AND reminder_at <= $1
   AND status <> 'cancelled'
 ORDER BY reminder_at
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, now, limit)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PostgresEventRepo) MarkReminderSent(ctx context.Context, tx repository.Tx, eventID string) error {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE events SET reminder_sent = TRUE, updated_at = NOW() WHERE id=$1;`, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepo) CountByCategory(ctx context.Context, tx repository.Tx) (map[model.EventCategory]int, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		`SELECT category, COUNT(*) FROM events GROUP BY category;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.EventCategory]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[model.EventCategory(cat)] = n
	}
	return out, rows.Err()
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	defer rows.Close()
	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e        model.Event
		category string
		status   string
		priority string
		date     time.Time
		clock    *string
	)
	err := row.Scan(&e.ID, &e.UserID, &category, &e.Title, &date, &clock,
		&e.Person, &e.Location, &e.Description, &status, &priority,
		&e.RawMessage, &e.ReminderAt, &e.ReminderSent, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Category = model.EventCategory(category)
	e.Status = model.EventStatus(status)
	e.Priority = model.EventPriority(priority)
	e.Date = calendar.DateOf(date)
	if clock != nil && *clock != "" {
		ct, err := calendar.ParseClockTime(*clock)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.Time = &ct
	}
	return &e, nil
}
