// Package sched runs the in-process schedule: the nightly digest enqueue,
// the worker drain tick, and the reminder sweep. Deployments that trigger
// the digest from an external scheduler instead hit the HTTP cron endpoint;
// both paths funnel into the same job queue, so double-triggering is safe.
package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
	"whatsapp-calendar-assistant/internal/usecase"
)

type Scheduler struct {
	cron       *cron.Cron
	jobs       repository.CronJobRepository
	digestUC   usecase.DigestUseCase
	reminderUC usecase.ReminderUseCase
	digestHour int
	log        *zerolog.Logger
}

func New(
	loc *time.Location,
	jobs repository.CronJobRepository,
	digestUC usecase.DigestUseCase,
	reminderUC usecase.ReminderUseCase,
	digestHour int,
	logger *zerolog.Logger,
) *Scheduler {
	compLog := logger.With().Str("component", "Scheduler").Logger()
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		jobs:       jobs,
		digestUC:   digestUC,
		reminderUC: reminderUC,
		digestHour: digestHour,
		log:        &compLog,
	}
}

// Start registers the entries and launches the cron loop. The digest
// enqueue fires once a day at the configured local hour; the drain and
// sweep tick every minute so an enqueued job is picked up promptly.
func (s *Scheduler) Start(ctx context.Context) error {
	daily := fmt.Sprintf("0 %d * * *", s.digestHour)
	if _, err := s.cron.AddFunc(daily, func() { s.enqueueDigest(ctx) }); err != nil {
		return fmt.Errorf("register digest enqueue: %w", err)
	}
	if _, err := s.cron.AddFunc("* * * * *", func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("register worker tick: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("digest_schedule", daily).Msg("scheduler started")
	return nil
}

// Stop halts scheduling and waits for in-flight entries to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) enqueueDigest(ctx context.Context) {
	job, err := s.jobs.Enqueue(ctx, repository.NoTX, model.JobTypeDailyDigest)
	if err != nil {
		s.log.Error().Err(err).Msg("digest enqueue failed")
		return
	}
	s.log.Info().Str("job_id", job.ID).Msg("daily digest enqueued")
}

func (s *Scheduler) tick(ctx context.Context) {
	report := s.digestUC.RunOnce(ctx)
	if report.Status != usecase.RunStatusNoJobs {
		s.log.Info().Str("status", report.Status).Str("job_id", report.JobID).Msg("worker tick")
	}

	sent, err := s.reminderUC.SweepDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reminder sweep failed")
		return
	}
	if sent > 0 {
		s.log.Info().Int("count", sent).Msg("reminders sent")
	}
}
