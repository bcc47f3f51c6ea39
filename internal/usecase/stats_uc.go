package usecase

import (
	"context"

	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase backs the read-only admin stats endpoint.
type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type Stats struct {
	Users            int            `json:"users"`
	EventsByCategory map[string]int `json:"events_by_category"`
}

type statsUC struct {
	users  repository.UserRepository
	events repository.EventRepository
}

func NewStatsUseCase(users repository.UserRepository, events repository.EventRepository) *statsUC {
	return &statsUC{users: users, events: events}
}

var allCategories = []model.EventCategory{
	model.CategoryFlight, model.CategoryHotel, model.CategoryMeeting,
	model.CategoryTask, model.CategoryDeadline, model.CategoryCall,
	model.CategoryGeneric,
}

// Snapshot zero-fills every known category so dashboard series never
// appear and disappear as counts move through zero.
func (s *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	userCount, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byCat, err := s.events.CountByCategory(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	out := &Stats{Users: userCount, EventsByCategory: make(map[string]int, len(allCategories))}
	for _, cat := range allCategories {
		out.EventsByCategory[string(cat)] = byCat[cat]
	}
	return out, nil
}
