// Package ics renders a set of schedule events as an iCalendar payload
// suitable for attaching to the digest email.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"whatsapp-calendar-assistant/internal/domain/model"
)

const prodID = "-//whatsapp-calendar-assistant//digest//EN"

// Build serializes the given events into a VCALENDAR. Events without a
// clock time become all-day VEVENTs; timed events get a one-hour slot.
func Build(events []*model.Event, calendarName string) ([]byte, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to serialize")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetName(calendarName)

	now := time.Now().UTC()
	for _, ev := range events {
		uid := ev.ID
		if uid == "" {
			uid = uuid.NewString()
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetSummary(summaryFor(ev))
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}

		if ev.Time == nil {
			start := ev.Date.Time()
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(start.AddDate(0, 0, 1))
			continue
		}
		start := ev.Date.Time().Add(
			time.Duration(ev.Time.Hour)*time.Hour + time.Duration(ev.Time.Minute)*time.Minute)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(time.Hour))
	}

	return []byte(cal.Serialize()), nil
}

func summaryFor(ev *model.Event) string {
	if ev.Category == model.CategoryGeneric || ev.Category == "" {
		return ev.Title
	}
	return fmt.Sprintf("[%s] %s", ev.Category, ev.Title)
}
