package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"whatsapp-calendar-assistant/internal/domain/model"
)

// digestDoc is the data handed to the HTML template.
type digestDoc struct {
	User      string
	Generated string
	Range     string
	Summary   []summaryPill
	Days      []daySection
}

type summaryPill struct {
	Label string
	Count int
}

type daySection struct {
	Label  string
	Events []eventLine
}

type eventLine struct {
	Time  string
	Title string
	Meta  string
}

var digestTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #141414; margin: 40px; }
  header { display: flex; justify-content: space-between; align-items: baseline; }
  h1 { font-size: 22px; margin: 0; }
  .sub { font-size: 11px; color: #666; }
  .pills { margin: 24px 0; }
  .pill { display: inline-block; background: #f5f5f5; border-radius: 8px;
          padding: 5px 11px; margin-right: 8px; font-size: 10px; }
  .day { margin-bottom: 18px; page-break-inside: avoid; }
  .day h2 { font-size: 12px; border-bottom: 1px solid #ddd; padding-bottom: 3px; }
  .ev { font-size: 11px; margin: 4px 0; }
  .ev .t { font-weight: bold; margin-right: 6px; }
  .ev .m { color: #666; font-size: 10px; }
</style>
</head>
<body>
<header>
  <div>
    <h1>Smart Calendar</h1>
    <div class="sub">{{.User}} &middot; {{.Range}}</div>
  </div>
  <div class="sub">{{.Generated}}</div>
</header>
<div class="pills">
{{- range .Summary}}
  <span class="pill">{{.Label}} {{.Count}}</span>
{{- end}}
</div>
{{- range .Days}}
<div class="day">
  <h2>{{.Label}}</h2>
  {{- range .Events}}
  <div class="ev"><span class="t">{{.Time}}</span>{{.Title}}{{if .Meta}} <span class="m">{{.Meta}}</span>{{end}}</div>
  {{- end}}
</div>
{{- end}}
</body>
</html>
`))

// buildDigestHTML lays out the schedule the way the digest PDF shows it:
// header, category summary pills, then one section per day in order.
func buildDigestHTML(events []*model.Event, userName, rangeLabel string) ([]byte, error) {
	doc := digestDoc{
		User:      userName,
		Generated: time.Now().Format("Mon, 2 Jan 2006 15:04"),
		Range:     rangeLabel,
		Summary:   summarize(events),
		Days:      groupByDay(events),
	}
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("digest template: %w", err)
	}
	return buf.Bytes(), nil
}

func summarize(events []*model.Event) []summaryPill {
	counts := map[model.EventCategory]int{}
	for _, e := range events {
		if e.Category == model.CategoryTask && e.Status == model.StatusCompleted {
			continue
		}
		counts[e.Category]++
	}
	return []summaryPill{
		{"Flights", counts[model.CategoryFlight]},
		{"Hotels", counts[model.CategoryHotel]},
		{"Meetings", counts[model.CategoryMeeting]},
		{"Tasks", counts[model.CategoryTask]},
		{"Deadlines", counts[model.CategoryDeadline]},
	}
}

// groupByDay assumes the input is already in (date, time) order, which is
// what the event repository returns.
func groupByDay(events []*model.Event) []daySection {
	var days []daySection
	for _, e := range events {
		label := e.Date.Time().Format("Mon 02 Jan")
		if len(days) == 0 || days[len(days)-1].Label != label {
			days = append(days, daySection{Label: label})
		}
		line := eventLine{Title: e.Title, Meta: metaFor(e)}
		if e.Time != nil {
			line.Time = e.Time.Format12h()
		}
		days[len(days)-1].Events = append(days[len(days)-1].Events, line)
	}
	return days
}

func metaFor(e *model.Event) string {
	switch {
	case e.Person != "" && e.Location != "":
		return e.Person + " • " + e.Location
	case e.Person != "":
		return e.Person
	default:
		return e.Location
	}
}
