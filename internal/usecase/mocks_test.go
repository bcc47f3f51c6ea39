package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

// ---------------- in-memory repositories ----------------

type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byPhone map[string]*model.User

	errFind error
	errList error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*model.User{}, byPhone: map[string]*model.User{}}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	m.byPhone[u.PhoneNumber] = &cp
	return nil
}

func (m *memUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	if m.errFind != nil {
		return nil, m.errFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byPhone[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.byID {
		if u.HasDeliveryChannel() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []*model.Event

	errSave error
	errList error
}

func newMemEventRepo() *memEventRepo { return &memEventRepo{} }

func (m *memEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	if m.errSave != nil {
		return m.errSave
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.events {
		if existing.ID == e.ID {
			cp := *e
			m.events[i] = &cp
			return nil
		}
	}
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *memEventRepo) QueryRange(ctx context.Context, tx repository.Tx, userID string, from, to calendar.Date) ([]*model.Event, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if e.Date.Before(from) || to.Before(e.Date) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sortEvents(out)
	return out, nil
}

func (m *memEventRepo) ListUpcoming(ctx context.Context, tx repository.Tx, userID string, today calendar.Date, horizonDays int) ([]*model.Event, error) {
	all, err := m.QueryRange(ctx, tx, userID, today, today.AddDays(horizonDays))
	if err != nil {
		return nil, err
	}
	var out []*model.Event
	for _, e := range all {
		if e.Status != model.StatusCancelled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) ListDueReminders(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Event, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.ReminderSent || e.ReminderAt == nil || e.ReminderAt.After(now) {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memEventRepo) MarkReminderSent(ctx context.Context, tx repository.Tx, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == eventID {
			e.ReminderSent = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memEventRepo) CountByCategory(ctx context.Context, tx repository.Tx) (map[model.EventCategory]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[model.EventCategory]int{}
	for _, e := range m.events {
		out[e.Category]++
	}
	return out, nil
}

func sortEvents(events []*model.Event) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].SortsBefore(events[j-1]); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs []*model.CronJob

	errClaim error
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{} }

func (m *memJobRepo) Enqueue(ctx context.Context, tx repository.Tx, jobType model.CronJobType) (*model.CronJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &model.CronJob{
		ID:        newJobID(len(m.jobs)),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
	}
	m.jobs = append(m.jobs, job)
	return job, nil
}

func newJobID(n int) string { return "job-" + string(rune('a'+n)) }

func (m *memJobRepo) ClaimNext(ctx context.Context) (*model.CronJob, error) {
	if m.errClaim != nil {
		return nil, m.errClaim
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.Status == model.JobStatusPending {
			now := time.Now()
			job.Status = model.JobStatusRunning
			job.StartedAt = &now
			cp := *job
			return &cp, nil
		}
	}
	return nil, domain.ErrNoPendingJob
}

func (m *memJobRepo) Complete(ctx context.Context, tx repository.Tx, jobID string, result model.JobResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.ID == jobID {
			job.Status = model.JobStatusCompleted
			r := result
			job.Result = &r
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memJobRepo) Fail(ctx context.Context, tx repository.Tx, jobID, jobError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.ID == jobID {
			job.Status = model.JobStatusFailed
			job.LastError = jobError
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memJobRepo) find(jobID string) *model.CronJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.ID == jobID {
			return job
		}
	}
	return nil
}

type memLedger struct {
	mu    sync.Mutex
	rows  map[string]map[string]struct{} // day -> user set
	marks int

	errLoad error
}

func newMemLedger() *memLedger { return &memLedger{rows: map[string]map[string]struct{}{}} }

func (m *memLedger) LoadDelivered(ctx context.Context, tx repository.Tx, day calendar.Date) (map[string]struct{}, error) {
	if m.errLoad != nil {
		return nil, m.errLoad
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]struct{}{}
	for userID := range m.rows[day.String()] {
		out[userID] = struct{}{}
	}
	return out, nil
}

func (m *memLedger) MarkDelivered(ctx context.Context, tx repository.Tx, userID string, day calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[day.String()] == nil {
		m.rows[day.String()] = map[string]struct{}{}
	}
	m.rows[day.String()][userID] = struct{}{}
	m.marks++
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []*model.MessageLog
}

func (m *memAudit) Append(ctx context.Context, tx repository.Tx, entry *model.MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// ---------------- adapter mocks ----------------

type mockChatSender struct {
	mu    sync.Mutex
	sent  []string // phone numbers
	texts []string
	err   error
}

func (m *mockChatSender) SendMessage(ctx context.Context, phone, body, mediaURL string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, phone)
	m.texts = append(m.texts, body)
	return "SM123", nil
}

type mockEmailSender struct {
	mu          sync.Mutex
	sent        []string // recipient addresses
	attachments [][]adapter.Attachment
	err         error
}

func (m *mockEmailSender) Send(ctx context.Context, to, subject, html string, attachments []adapter.Attachment) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.attachments = append(m.attachments, attachments)
	return "em123", nil
}

type mockRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockRenderer) RenderPDF(ctx context.Context, events []*model.Event, userName string, r adapter.DateRange) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type mockAlerts struct {
	mu    sync.Mutex
	texts []string
}

func (m *mockAlerts) Alert(ctx context.Context, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
}

type mockLimiter struct {
	allow bool
	err   error
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.allow, m.err
}

type mockExtractor struct {
	result *adapter.ExtractedEvent
	err    error
	called bool
}

func (m *mockExtractor) Extract(ctx context.Context, text string, today calendar.Date) (*adapter.ExtractedEvent, error) {
	m.called = true
	return m.result, m.err
}
