// Package messaging implements the in-process event bus.
package messaging

import (
	"errors"
	"sync"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// ErrEventBusClosed is returned after Close.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// Handler errors are logged and never returned to the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	log         *logger.Logger
	metrics     *EventBusMetrics
	closed      bool
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(log *logger.Logger) *InMemoryEventBus {
	if log == nil {
		log = logger.Nop()
	}
	return &InMemoryEventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		log:      log.With(logger.Component("eventbus")),
		metrics:  &EventBusMetrics{},
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler", logger.EventType(string(eventType)))
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish runs every handler for the event type, then every global handler.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	b.metrics.recordPublish()
	for _, handler := range handlers {
		start := time.Now()
		err := handler(event)
		b.metrics.recordHandler(err == nil)
		if err != nil {
			b.log.Error("handler error",
				logger.EventType(string(event.EventType())),
				logger.Latency(time.Since(start)),
				logger.Err(err),
			)
		}
	}
	return nil
}

// Close stops accepting subscriptions and events.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Metrics returns a snapshot of the bus counters.
func (b *InMemoryEventBus) Metrics() EventBusMetricsSnapshot {
	return b.metrics.Snapshot()
}

// EventBusMetrics counts published events and handler outcomes.
type EventBusMetrics struct {
	mu        sync.Mutex
	published int64
	succeeded int64
	failed    int64
}

// EventBusMetricsSnapshot is a copy of the counters.
type EventBusMetricsSnapshot struct {
	Published int64
	Succeeded int64
	Failed    int64
}

func (m *EventBusMetrics) recordPublish() {
	m.mu.Lock()
	m.published++
	m.mu.Unlock()
}

func (m *EventBusMetrics) recordHandler(ok bool) {
	m.mu.Lock()
	if ok {
		m.succeeded++
	} else {
		m.failed++
	}
	m.mu.Unlock()
}

// Snapshot returns the current counters.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return EventBusMetricsSnapshot{Published: m.published, Succeeded: m.succeeded, Failed: m.failed}
}
