package usecase

import (
	"context"
	"testing"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
)

func TestStatsSnapshot(t *testing.T) {
	users := newMemUserRepo()
	events := newMemEventRepo()
	uc := NewStatsUseCase(users, events)

	u, _ := model.NewUser("", "+919800000001")
	users.Save(context.Background(), nil, u)

	date := calendar.Date{Year: 2025, Month: 1, Day: 11}
	for _, cat := range []model.EventCategory{model.CategoryMeeting, model.CategoryMeeting, model.CategoryFlight} {
		e, _ := model.NewEvent(u.ID, cat, "x", date)
		events.Save(context.Background(), nil, e)
	}

	st, err := uc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if st.Users != 1 {
		t.Errorf("users = %d", st.Users)
	}
	if st.EventsByCategory["meeting"] != 2 || st.EventsByCategory["flight"] != 1 {
		t.Errorf("by category = %v", st.EventsByCategory)
	}
	// Untouched categories still show up, zeroed.
	if n, ok := st.EventsByCategory["hotel"]; !ok || n != 0 {
		t.Errorf("hotel = %d present=%v", n, ok)
	}
}

func TestStatsSnapshotZeroFillsEmptyStore(t *testing.T) {
	uc := NewStatsUseCase(newMemUserRepo(), newMemEventRepo())

	st, err := uc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	for _, cat := range allCategories {
		if n, ok := st.EventsByCategory[string(cat)]; !ok || n != 0 {
			t.Errorf("category %s = %d present=%v", cat, n, ok)
		}
	}
}
