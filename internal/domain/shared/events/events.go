// Package events carries the domain event plumbing shared by all aggregates.
package events

import "time"

// DomainEvent is something that happened to an aggregate and that other parts
// of the system may react to.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects pending domain events on an aggregate until they are
// drained into the outbox. Aggregates embed it by value.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event. Nil events are dropped so callers can record the
// result of a constructor unconditionally.
func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// PendingEvents returns a copy of the recorded events in recording order.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearEvents drops recorded events, called after they reach the outbox.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
