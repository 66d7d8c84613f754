package events

import "time"

// Event is a fact recorded by an aggregate, published asynchronously
// through the outbox.
type Event interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects events raised by an aggregate until the
// application layer drains them into the outbox.
type EventRecorder struct {
	pending []Event
}

func (r *EventRecorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// PendingEvents returns a copy of the recorded events.
func (r *EventRecorder) PendingEvents() []Event {
	return append([]Event(nil), r.pending...)
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
