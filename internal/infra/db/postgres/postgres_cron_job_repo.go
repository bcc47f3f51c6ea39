package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

var _ repository.CronJobRepository = (*cronJobRepo)(nil)

type cronJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewCronJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *cronJobRepo {
	return &cronJobRepo{pool: pool, tm: tm}
}

func (r *cronJobRepo) Enqueue(ctx context.Context, tx repository.Tx, jobType model.CronJobType) (*model.CronJob, error) {
	job := &model.CronJob{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
	}
	const q = `
INSERT INTO cron_jobs (id, job_type, status, created_at)
VALUES ($1, $2, $3, $4);`
	if _, err := execSQL(ctx, r.pool, tx, q, job.ID, string(job.Type), string(job.Status), job.CreatedAt); err != nil {
		return nil, err
	}
	return job, nil
}

// ClaimNext takes the oldest pending job with FOR UPDATE SKIP LOCKED inside
// a transaction and flips it to running before committing. Concurrent
// callers skip each other's locked row, so a job is handed out exactly once.
func (r *cronJobRepo) ClaimNext(ctx context.Context) (*model.CronJob, error) {
	var job *model.CronJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetchQuery = `
SELECT id, job_type, status, created_at
  FROM cron_jobs
 WHERE status = 'pending'
 ORDER BY created_at
 LIMIT 1
 FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery)
		if err != nil {
			return err
		}

		var claimed model.CronJob
		var jobType, status string
		if err := row.Scan(&claimed.ID, &jobType, &status, &claimed.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoPendingJob
			}
			return domain.ErrReadDatabaseRow
		}
		claimed.Type = model.CronJobType(jobType)

		now := time.Now()
		claimed.Status = model.JobStatusRunning
		claimed.StartedAt = &now

		const markQuery = `
UPDATE cron_jobs SET status = 'running', started_at = $2 WHERE id = $1;`
		if _, err := execSQL(ctx, r.pool, tx, markQuery, claimed.ID, now); err != nil {
			return err
		}

		job = &claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *cronJobRepo) Complete(ctx context.Context, tx repository.Tx, jobID string, result model.JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	const q = `
UPDATE cron_jobs
   SET status = 'completed', result = $2, finished_at = NOW()
 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, jobID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cronJobRepo) Fail(ctx context.Context, tx repository.Tx, jobID string, jobError string) error {
	const q = `
UPDATE cron_jobs
   SET status = 'failed', last_error = $2, finished_at = NOW()
 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, jobID, jobError)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
