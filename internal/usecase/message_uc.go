package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
	"whatsapp-calendar-assistant/internal/infra/logging"
	"whatsapp-calendar-assistant/internal/infra/metrics"
	"whatsapp-calendar-assistant/internal/parser"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ MessageUseCase = (*messageUC)(nil)

// MessageUseCase handles one inbound WhatsApp message end to end and
// always produces a reply string. The webhook contract requires some reply
// even on internal error, so Handle never returns one.
type MessageUseCase interface {
	Handle(ctx context.Context, phone, body string) string
}

const (
	replyApology = "Sorry, something went wrong on my side. Please try again in a moment."
	replySlower  = "You're sending messages a little too fast. Give me a minute and try again."

	replyUsage = "I couldn't understand that. Try:\n" +
		"• \"meeting tomorrow 4pm with Raj\"\n" +
		"• \"flight to Mumbai day after tomorrow\"\n" +
		"• \"today\" to see today's schedule"

	replyDateRequired = "I need a date to save that. Add \"today\", \"tomorrow\" or \"day after tomorrow\"."
)

type messageUC struct {
	users     repository.UserRepository
	events    repository.EventRepository
	audit     repository.MessageLogRepository
	tm        repository.TransactionManager
	clock     *calendar.Clock
	limiter   adapter.RateLimiter
	extractor adapter.EventExtractor
	rateMax   int
	rateWin   time.Duration
	log       *zerolog.Logger
}

func NewMessageUseCase(
	users repository.UserRepository,
	events repository.EventRepository,
	audit repository.MessageLogRepository,
	tm repository.TransactionManager,
	clock *calendar.Clock,
	limiter adapter.RateLimiter,
	extractor adapter.EventExtractor,
	rateMax int,
	rateWin time.Duration,
	logger *zerolog.Logger,
) *messageUC {
	if rateMax <= 0 {
		rateMax = 20
	}
	if rateWin <= 0 {
		rateWin = time.Minute
	}
	return &messageUC{
		users:     users,
		events:    events,
		audit:     audit,
		tm:        tm,
		clock:     clock,
		limiter:   limiter,
		extractor: extractor,
		rateMax:   rateMax,
		rateWin:   rateWin,
		log:       logger,
	}
}

// Handle runs the single-pass pipeline: rate gate, user resolution, audit
// log, parse, act, reply. There is no retry within a message; any stage
// failure degrades to a generic reply.
func (m *messageUC) Handle(ctx context.Context, phone, body string) string {
	defer logging.TraceDuration(m.log, "MessageUC.Handle")()

	phone = strings.TrimSpace(phone)
	if phone == "" || strings.TrimSpace(body) == "" {
		return replyUsage
	}

	if !m.allow(ctx, phone) {
		m.appendAudit(ctx, "", phone, body, model.ActionRateLimited)
		metrics.IncMessageHandled(model.ActionRateLimited)
		return replySlower
	}

	user, err := m.resolveUser(ctx, phone)
	if err != nil {
		m.log.Error().Err(err).Str("phone", phone).Msg("user resolution failed")
		m.appendAudit(ctx, "", phone, body, model.ActionReceived)
		metrics.IncMessageHandled("error")
		return replyApology
	}

	// The raw payload is logged no matter what the parse decides.
	m.appendAudit(ctx, user.ID, phone, body, model.ActionReceived)

	msg := parser.ParseMessage(body)
	switch {
	case msg.Query != nil:
		metrics.IncMessageHandled(model.ActionQueryAnswered)
		return m.answerQuery(ctx, user, *msg.Query)
	case len(msg.Creates) > 0:
		metrics.IncMessageHandled(model.ActionEventsCreated)
		return m.createEvents(ctx, user, body, msg)
	case len(msg.Skipped) > 0:
		metrics.IncMessageHandled(model.ActionUnrecognized)
		return replyDateRequired
	default:
		return m.tryExtractor(ctx, user, body)
	}
}

// allow consults the shared fixed-window counter. A limiter outage fails
// open: losing rate limiting briefly beats dropping user messages.
func (m *messageUC) allow(ctx context.Context, phone string) bool {
	if m.limiter == nil {
		return true
	}
	ok, err := m.limiter.Allow(ctx, "rate:msg:"+phone, m.rateMax, m.rateWin)
	if err != nil {
		m.log.Warn().Err(err).Str("phone", phone).Msg("rate limiter unavailable, allowing")
		return true
	}
	return ok
}

// resolveUser finds or creates the sender inside a serializable
// transaction so concurrent duplicate messages cannot create two users.
func (m *messageUC) resolveUser(ctx context.Context, phone string) (*model.User, error) {
	var user *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := m.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := m.users.FindByPhone(ctx, tx, phone)
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		if existing != nil {
			existing.Touch()
			if err := m.users.Save(ctx, tx, existing); err != nil {
				return err
			}
			user = existing
			return nil
		}
		nu, err := model.NewUser("", phone)
		if err != nil {
			return err
		}
		if err := m.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		return nil
	})
	return user, err
}

func (m *messageUC) appendAudit(ctx context.Context, userID, phone, body, action string) {
	entry := model.NewMessageLog(userID, phone, model.DirectionInbound, body, action)
	if err := m.audit.Append(ctx, repository.NoTX, entry); err != nil {
		m.log.Error().Err(err).Str("phone", phone).Msg("audit log write failed")
	}
}

func (m *messageUC) answerQuery(ctx context.Context, user *model.User, q parser.Query) string {
	today := m.clock.HumanToday()
	from, to := today.AddDays(q.FromOffset), today.AddDays(q.ToOffset)

	events, err := m.events.QueryRange(ctx, repository.NoTX, user.ID, from, to)
	if err != nil {
		m.log.Error().Err(err).Str("user_id", user.ID).Msg("event query failed")
		return replyApology
	}
	if len(events) == 0 {
		if from.Equal(to) {
			return fmt.Sprintf("No events on %s. You're free!", from)
		}
		return fmt.Sprintf("No events between %s and %s. You're free!", from, to)
	}
	return renderSchedule(events, from, to)
}

// renderSchedule groups events by date and renders a flat list reply.
// Events arrive ordered (date, time) ascending from the repository.
func renderSchedule(events []*model.Event, from, to calendar.Date) string {
	var sb strings.Builder
	if from.Equal(to) {
		fmt.Fprintf(&sb, "📅 Schedule for %s:\n", from)
	} else {
		fmt.Fprintf(&sb, "📅 Schedule %s to %s:\n", from, to)
	}
	var current calendar.Date
	for _, e := range events {
		if !e.Date.Equal(current) {
			current = e.Date
			fmt.Fprintf(&sb, "\n%s\n", current)
		}
		sb.WriteString(formatEventLine(e))
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatEventLine(e *model.Event) string {
	var sb strings.Builder
	sb.WriteString("• ")
	if e.Time != nil {
		sb.WriteString(e.Time.Format12h())
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "[%s] %s", e.Category, e.Title)
	return sb.String()
}

func (m *messageUC) createEvents(ctx context.Context, user *model.User, raw string, msg parser.Message) string {
	today := m.clock.HumanToday()
	var saved []*model.Event
	for _, cr := range msg.Creates {
		event, err := model.NewEvent(user.ID, cr.Category, cr.Title, today.AddDays(cr.Offset))
		if err != nil {
			m.log.Error().Err(err).Str("user_id", user.ID).Msg("event construction failed")
			continue
		}
		event.Time = cr.Time
		event.RawMessage = raw
		if err := m.events.Save(ctx, repository.NoTX, event); err != nil {
			m.log.Error().Err(err).Str("user_id", user.ID).Msg("event insert failed")
			continue
		}
		saved = append(saved, event)
	}
	if len(saved) == 0 {
		return replyApology
	}

	var sb strings.Builder
	if len(saved) == 1 {
		sb.WriteString("✅ Saved:\n")
	} else {
		fmt.Fprintf(&sb, "✅ Saved %d events:\n", len(saved))
	}
	for _, e := range saved {
		fmt.Fprintf(&sb, "• [%s] %s on %s", e.Category, e.Title, e.Date)
		if e.Time != nil {
			fmt.Fprintf(&sb, " at %s", e.Time.Format12h())
		}
		sb.WriteByte('\n')
	}
	if len(msg.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped %d line(s) without a date.", len(msg.Skipped))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// tryExtractor hands unclassifiable messages to the optional AI
// collaborator. The deterministic parser has already had its turn; the
// extractor never overrides it.
func (m *messageUC) tryExtractor(ctx context.Context, user *model.User, body string) string {
	if m.extractor == nil {
		metrics.IncMessageHandled(model.ActionUnrecognized)
		return replyUsage
	}
	extracted, err := m.extractor.Extract(ctx, body, m.clock.HumanToday())
	if err != nil {
		m.log.Warn().Err(err).Str("user_id", user.ID).Msg("ai extraction failed")
		metrics.IncMessageHandled(model.ActionUnrecognized)
		return replyUsage
	}
	if extracted == nil {
		metrics.IncMessageHandled(model.ActionUnrecognized)
		return replyUsage
	}

	event, err := model.NewEvent(user.ID, extracted.Category, extracted.Title, extracted.Date)
	if err != nil {
		metrics.IncMessageHandled(model.ActionUnrecognized)
		return replyUsage
	}
	event.Time = extracted.Time
	event.Person = extracted.Person
	event.Location = extracted.Location
	event.Description = extracted.Description
	if extracted.Priority != "" {
		event.Priority = extracted.Priority
	}
	event.RawMessage = body
	if err := m.events.Save(ctx, repository.NoTX, event); err != nil {
		m.log.Error().Err(err).Str("user_id", user.ID).Msg("extracted event insert failed")
		return replyApology
	}
	metrics.IncMessageHandled(model.ActionEventsCreated)

	reply := fmt.Sprintf("✅ Saved: [%s] %s on %s", event.Category, event.Title, event.Date)
	if event.Time != nil {
		reply += " at " + event.Time.Format12h()
	}
	return reply
}
