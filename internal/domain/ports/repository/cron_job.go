package repository

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/model"
)

// CronJobRepository is the job queue port. ClaimNext must be safe under
// concurrent callers: only one caller may receive a given pending job,
// enforced by the backing store's atomic claim primitive, never by
// application-level locking.
type CronJobRepository interface {
	Enqueue(ctx context.Context, tx Tx, jobType model.CronJobType) (*model.CronJob, error)
	// ClaimNext atomically selects the oldest pending job and marks it
	// running. Returns domain.ErrNoPendingJob when the queue is empty.
	// A job left running by a crashed worker is NOT reclaimed here; it
	// stays visible to operators until swept externally.
	ClaimNext(ctx context.Context) (*model.CronJob, error)
	Complete(ctx context.Context, tx Tx, jobID string, result model.JobResult) error
	Fail(ctx context.Context, tx Tx, jobID string, jobError string) error
}
