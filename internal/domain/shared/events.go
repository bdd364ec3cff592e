package shared

import "time"

// EventType names a domain event.
type EventType string

const (
	EventStudentRegistered   EventType = "student.registered"
	EventAttendanceMarked    EventType = "attendance.marked"
	EventAttendanceDayMarked EventType = "attendance.day_marked"
	EventLegacyImported      EventType = "roster.legacy_imported"
)

// Event is something that happened to the roster or the ledger.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time

	// AggregateID identifies what changed: a student id, a date, or "roster".
	AggregateID() string

	// Payload is the event data as log fields.
	Payload() map[string]interface{}
}

// BaseEvent carries the fields every event has. Embed it in concrete events.
type BaseEvent struct {
	Type          EventType `json:"type"`
	At            time.Time `json:"at"`
	Aggregate     string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent stamps an event of type t about aggregate at time at.
func NewBaseEvent(t EventType, aggregate string, at time.Time) BaseEvent {
	return BaseEvent{Type: t, At: at, Aggregate: aggregate}
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.At }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }

// Correlation returns the id of the invocation that caused the event, or "".
func (e BaseEvent) Correlation() string { return e.CorrelationID }

// WithCorrelationID returns a copy tagged with id.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// EventHandler reacts to one event.
type EventHandler func(event Event) error

// EventPublisher delivers events to subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber registers handlers.
type EventSubscriber interface {
	// Subscribe registers handler for one event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler EventHandler) error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
