package ical

import (
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"staybook/internal/app/policies"
)

// Writer renders booking spans as a published ICS document other
// calendars can subscribe to.
type Writer struct{}

var _ policies.CalendarWriter = Writer{}

func (Writer) Encode(calendarName string, events []policies.ExportEvent) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//staybook//booking calendar//EN")
	cal.SetName(calendarName)
	for _, ev := range events {
		ve := cal.AddEvent(uuid.NewString())
		ve.SetAllDayStartAt(ev.Start)
		ve.SetAllDayEndAt(ev.End)
		ve.SetSummary(ev.Summary)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}
	return cal.Serialize(), nil
}
