package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
	"whatsapp-calendar-assistant/internal/ics"
	"whatsapp-calendar-assistant/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Window is the digest delivery window: a fixed hour-of-day with a
// symmetric tolerance band, because the external trigger does not fire at
// a guaranteed instant. Times are evaluated in the target time zone.
type Window struct {
	Hour         int
	ToleranceMin int
}

// InWindow reports whether now (already in the target zone) falls inside
// the band. Distance is computed on minute-of-day, so a band around
// midnight behaves.
func (w Window) InWindow(now time.Time) bool {
	target := w.Hour * 60
	minute := now.Hour()*60 + now.Minute()
	diff := minute - target
	if diff < 0 {
		diff = -diff
	}
	if diff > 720 {
		diff = 1440 - diff
	}
	return diff <= w.ToleranceMin
}

// Run statuses reported to the trigger caller. Observability only; the
// caller never branches on them.
const (
	RunStatusNoJobs      = "no_jobs"
	RunStatusClaimFailed = "claim_failed"
	RunStatusUnknownType = "unknown_job_type"
	RunStatusSkipped     = "skipped_time_window"
	RunStatusCompleted   = "completed"
	RunStatusFailed      = "failed"
)

// RunReport summarizes one worker invocation.
type RunReport struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Compile-time check
var _ DigestUseCase = (*digestUC)(nil)

// DigestUseCase claims at most one job per invocation and fans a per-user
// digest out to each enabled channel independently.
type DigestUseCase interface {
	RunOnce(ctx context.Context) RunReport
}

type digestUC struct {
	jobs     repository.CronJobRepository
	users    repository.UserRepository
	events   repository.EventRepository
	ledger   repository.DigestLogRepository
	delivery repository.MessageLogRepository
	chat     adapter.ChatSender
	email    adapter.EmailSender
	renderer adapter.DigestRenderer
	alerts   adapter.AlertNotifier
	clock    *calendar.Clock
	window   Window
	horizon  int
	parallel int
	log      *zerolog.Logger
}

func NewDigestUseCase(
	jobs repository.CronJobRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	ledger repository.DigestLogRepository,
	delivery repository.MessageLogRepository,
	chat adapter.ChatSender,
	email adapter.EmailSender,
	renderer adapter.DigestRenderer,
	alerts adapter.AlertNotifier,
	clock *calendar.Clock,
	window Window,
	horizonDays, parallelism int,
	logger *zerolog.Logger,
) *digestUC {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	if parallelism <= 0 {
		parallelism = 4
	}
	compLog := logger.With().Str("component", "DigestWorker").Logger()
	return &digestUC{
		jobs:     jobs,
		users:    users,
		events:   events,
		ledger:   ledger,
		delivery: delivery,
		chat:     chat,
		email:    email,
		renderer: renderer,
		alerts:   alerts,
		clock:    clock,
		window:   window,
		horizon:  horizonDays,
		parallel: parallelism,
		log:      &compLog,
	}
}

// RunOnce is the worker entry point. It never panics past itself and never
// leaves a claimed job unfinalized as long as the queue is reachable.
func (u *digestUC) RunOnce(ctx context.Context) RunReport {
	start := time.Now()

	job, err := u.jobs.ClaimNext(ctx)
	if errors.Is(err, domain.ErrNoPendingJob) {
		return RunReport{Status: RunStatusNoJobs}
	}
	if err != nil {
		// Nothing was claimed, so there is nothing to fail.
		u.log.Error().Err(err).Msg("job claim failed")
		metrics.IncDigestJob(RunStatusClaimFailed)
		return RunReport{Status: RunStatusClaimFailed}
	}

	report := u.runClaimed(ctx, job)
	metrics.IncDigestJob(report.Status)
	metrics.ObserveDigestRun(time.Since(start))
	u.log.Info().
		Str("job_id", job.ID).
		Str("status", report.Status).
		Int("processed", report.Processed).
		Dur("duration", time.Since(start)).
		Msg("digest run finished")
	return report
}

func (u *digestUC) runClaimed(ctx context.Context, job *model.CronJob) (report RunReport) {
	report.JobID = job.ID

	// Whatever happens below, the claimed job must not stay running.
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("worker panic: %v", r)
			u.log.Error().Str("job_id", job.ID).Str("panic", msg).Msg("digest worker crashed")
			u.failJob(ctx, job.ID, msg)
			report.Status = RunStatusFailed
		}
	}()

	if job.Type != model.JobTypeDailyDigest {
		// A foreign job type is surfaced as a failure so queue-schema
		// drift is visible to operators, not silently dropped.
		u.failJob(ctx, job.ID, fmt.Sprintf("unknown job type %q", job.Type))
		report.Status = RunStatusUnknownType
		return report
	}

	now := u.clock.Now()
	if !u.window.InWindow(now) {
		// Expected skip, not an error: the trigger fires around the
		// clock but delivery happens only inside the window.
		u.completeJob(ctx, job.ID, model.JobResult{Reason: "outside_window"})
		report.Status = RunStatusSkipped
		return report
	}

	active, err := u.users.ListActive(ctx, repository.NoTX)
	if err != nil {
		u.failJob(ctx, job.ID, fmt.Sprintf("list users: %v", err))
		report.Status = RunStatusFailed
		return report
	}
	if len(active) == 0 {
		u.completeJob(ctx, job.ID, model.JobResult{Reason: "no_users"})
		report.Status = RunStatusCompleted
		return report
	}

	today := u.clock.HumanToday()
	served, err := u.ledger.LoadDelivered(ctx, repository.NoTX, today)
	if err != nil {
		u.failJob(ctx, job.ID, fmt.Sprintf("load digest ledger: %v", err))
		report.Status = RunStatusFailed
		return report
	}

	outcomes := u.fanOut(ctx, active, served, today)

	result := model.JobResult{}
	for _, oc := range outcomes {
		switch oc.Outcome {
		case model.OutcomeDelivered:
			result.Processed++
		case model.OutcomeSkipped:
			result.Skipped++
		case model.OutcomeFailed:
			result.Failed++
		}
	}
	u.completeJob(ctx, job.ID, result)
	report.Status = RunStatusCompleted
	report.Processed = result.Processed
	report.Skipped = result.Skipped
	report.Failed = result.Failed
	return report
}

// fanOut processes users with bounded parallelism. Per-user failures stay
// inside their own outcome; nothing here aborts the loop.
func (u *digestUC) fanOut(ctx context.Context, users []*model.User, served map[string]struct{}, today calendar.Date) []model.UserOutcome {
	var (
		mu       sync.Mutex
		outcomes []model.UserOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.parallel)

	// Skip verdicts are decided on this goroutine while workers for earlier
	// users may already be appending under mu, so they go to their own
	// slice and merge only after the group drains.
	var skipped []model.UserOutcome
	for _, user := range users {
		if !user.HasDeliveryChannel() {
			skipped = append(skipped, model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeSkipped, Reason: "no_channel"})
			continue
		}
		if _, done := served[user.ID]; done {
			skipped = append(skipped, model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeSkipped, Reason: "already_delivered"})
			continue
		}
		user := user
		g.Go(func() error {
			oc := u.processUser(gctx, user, today)
			mu.Lock()
			outcomes = append(outcomes, oc)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return append(outcomes, skipped...)
}

func (u *digestUC) processUser(ctx context.Context, user *model.User, today calendar.Date) model.UserOutcome {
	events, err := u.events.ListUpcoming(ctx, repository.NoTX, user.ID, today, u.horizon)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("upcoming events fetch failed")
		return model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeFailed, Reason: "event_fetch"}
	}
	if len(events) == 0 {
		return model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeSkipped, Reason: "no_events"}
	}

	rng := adapter.DateRange{From: today, To: today.AddDays(u.horizon)}

	// The artifact is built once per user, then each channel tries on its
	// own; one channel's failure never blocks the other.
	pdf, err := u.renderer.RenderPDF(ctx, events, user.DisplayName(), rng)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("digest render failed")
		return model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeFailed, Reason: "render"}
	}
	emailReady := u.email != nil && user.EmailEnabled && user.Email != ""
	summary := buildSummary(events, u.horizon, emailReady)

	delivered := false

	if user.WhatsAppEnabled && user.PhoneNumber != "" {
		if _, err := u.chat.SendMessage(ctx, user.PhoneNumber, summary, ""); err != nil {
			u.log.Error().Err(err).Str("user_id", user.ID).Msg("whatsapp digest failed")
			metrics.IncDigestDelivery("whatsapp", false)
		} else {
			delivered = true
			metrics.IncDigestDelivery("whatsapp", true)
			u.logDelivery(ctx, user, model.ActionDigestWhatsApp)
		}
	}

	if emailReady {
		attachments := []adapter.Attachment{{Filename: "schedule.pdf", Content: pdf}}
		if cal, err := ics.Build(events, user.DisplayName()); err == nil {
			attachments = append(attachments, adapter.Attachment{Filename: "schedule.ics", Content: cal})
		} else {
			u.log.Warn().Err(err).Str("user_id", user.ID).Msg("ics build failed, sending without calendar attachment")
		}
		subject := fmt.Sprintf("Your Upcoming %d-Day Schedule", u.horizon)
		html := "<p>Your schedule is attached.</p>"
		if _, err := u.email.Send(ctx, user.Email, subject, html, attachments); err != nil {
			u.log.Error().Err(err).Str("user_id", user.ID).Msg("email digest failed")
			metrics.IncDigestDelivery("email", false)
		} else {
			delivered = true
			metrics.IncDigestDelivery("email", true)
			u.logDelivery(ctx, user, model.ActionDigestEmail)
		}
	}

	if !delivered {
		// No ledger row: a later run is free to retry this user.
		return model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeFailed, Reason: "all_channels_failed"}
	}

	if err := u.ledger.MarkDelivered(ctx, repository.NoTX, user.ID, today); err != nil {
		// Delivery happened; a missing ledger row risks a duplicate on
		// the next run, which is the lesser harm. Flag it loudly.
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("digest ledger write failed")
	}
	return model.UserOutcome{UserID: user.ID, Outcome: model.OutcomeDelivered}
}

func buildSummary(events []*model.Event, horizonDays int, emailFollows bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Your next %d days (%d events):\n", horizonDays, len(events))
	const maxLines = 5
	for i, e := range events {
		if i == maxLines {
			fmt.Fprintf(&sb, "…and %d more.", len(events)-maxLines)
			if emailFollows {
				sb.WriteString(" Full schedule in your email.")
			}
			break
		}
		fmt.Fprintf(&sb, "• %s", e.Date)
		if e.Time != nil {
			fmt.Fprintf(&sb, " %s", e.Time.Format12h())
		}
		fmt.Fprintf(&sb, " %s\n", e.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (u *digestUC) logDelivery(ctx context.Context, user *model.User, action string) {
	entry := model.NewMessageLog(user.ID, user.PhoneNumber, model.DirectionOutbound, "", action)
	if err := u.delivery.Append(ctx, repository.NoTX, entry); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("delivery log write failed")
	}
}

func (u *digestUC) completeJob(ctx context.Context, jobID string, result model.JobResult) {
	if err := u.jobs.Complete(ctx, repository.NoTX, jobID, result); err != nil {
		u.log.Error().Err(err).Str("job_id", jobID).Msg("job completion write failed")
	}
}

func (u *digestUC) failJob(ctx context.Context, jobID, jobError string) {
	if err := u.jobs.Fail(ctx, repository.NoTX, jobID, jobError); err != nil {
		u.log.Error().Err(err).Str("job_id", jobID).Msg("job failure write failed")
	}
	if u.alerts != nil {
		u.alerts.Alert(ctx, fmt.Sprintf("digest job %s failed: %s", jobID, jobError))
	}
}
