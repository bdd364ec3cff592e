package eventhandler

import (
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// RecordActivityHandler writes one structured log line per domain event.
type RecordActivityHandler struct {
	log *logger.Logger
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(log *logger.Logger) *RecordActivityHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordActivityHandler{log: log.With(logger.Component("activity"))}
}

// Handle logs the event with its payload.
func (h *RecordActivityHandler) Handle(event shared.Event) error {
	fields := []logger.Field{
		logger.EventType(string(event.EventType())),
		logger.String("aggregate_id", event.AggregateID()),
		logger.Any("payload", event.Payload()),
	}
	if id, ok := correlationOf(event); ok {
		fields = append(fields, logger.String("correlation_id", id))
	}
	h.log.Info("activity", fields...)
	return nil
}

// Register subscribes the handler to every event.
func (h *RecordActivityHandler) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(h.Handle)
}

type correlated interface {
	Correlation() string
}

func correlationOf(event shared.Event) (string, bool) {
	c, ok := event.(correlated)
	if !ok || c.Correlation() == "" {
		return "", false
	}
	return c.Correlation(), true
}
