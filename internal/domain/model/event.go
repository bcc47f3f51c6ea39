package model

import (
	"time"

	"whatsapp-calendar-assistant/internal/domain"
	"whatsapp-calendar-assistant/internal/domain/calendar"

	"github.com/google/uuid"
)

type EventCategory string

const (
	CategoryFlight   EventCategory = "flight"
	CategoryHotel    EventCategory = "hotel"
	CategoryMeeting  EventCategory = "meeting"
	CategoryTask     EventCategory = "task"
	CategoryDeadline EventCategory = "deadline"
	CategoryCall     EventCategory = "call"
	CategoryGeneric  EventCategory = "generic"
)

func ParseEventCategory(s string) (EventCategory, bool) {
	switch EventCategory(s) {
	case CategoryFlight, CategoryHotel, CategoryMeeting, CategoryTask,
		CategoryDeadline, CategoryCall, CategoryGeneric:
		return EventCategory(s), true
	}
	return "", false
}

type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusConfirmed EventStatus = "confirmed"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

type EventPriority string

const (
	PriorityLow    EventPriority = "low"
	PriorityMedium EventPriority = "medium"
	PriorityHigh   EventPriority = "high"
	PriorityUrgent EventPriority = "urgent"
)

func ParseEventPriority(s string) (EventPriority, bool) {
	switch EventPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return EventPriority(s), true
	}
	return "", false
}

const maxTitleLen = 200

// Event is a scheduled item owned by a user. Date is mandatory and carries
// no time zone; it is interpreted in the owner's human day. Time is
// optional: an event without one is an all-day item.
type Event struct {
	ID           string
	UserID       string
	Category     EventCategory
	Title        string
	Date         calendar.Date
	Time         *calendar.ClockTime
	Person       string
	Location     string
	Description  string
	Status       EventStatus
	Priority     EventPriority
	RawMessage   string
	ReminderAt   *time.Time
	ReminderSent bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewEvent(userID string, category EventCategory, title string, date calendar.Date) (*Event, error) {
	if userID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	if date.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if category == "" {
		category = CategoryGeneric
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	now := time.Now()
	return &Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Title:     title,
		Date:      date,
		Status:    StatusPending,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SortsBefore orders events by (date, time) ascending; timeless events sort
// before timed ones on the same date.
func (e *Event) SortsBefore(o *Event) bool {
	if !e.Date.Equal(o.Date) {
		return e.Date.Before(o.Date)
	}
	switch {
	case e.Time == nil && o.Time == nil:
		return e.CreatedAt.Before(o.CreatedAt)
	case e.Time == nil:
		return true
	case o.Time == nil:
		return false
	default:
		return e.Time.Hour*60+e.Time.Minute < o.Time.Hour*60+o.Time.Minute
	}
}
