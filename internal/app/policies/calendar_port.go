package policies

import "time"

// ExportEvent is one booking span rendered into the exported calendar.
type ExportEvent struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
}

// CalendarWriter encodes booking spans as an ICS document.
type CalendarWriter interface {
	Encode(calendarName string, events []ExportEvent) (string, error)
}
