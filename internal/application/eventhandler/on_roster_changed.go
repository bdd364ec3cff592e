// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ROSTER CHANGED HANDLER
// Drops cached roster entries when students are added or imported.
// ═══════════════════════════════════════════════════════════════════════════

// OnRosterChangedHandler invalidates the roster cache.
type OnRosterChangedHandler struct {
	cache   student.Cache
	timeout time.Duration
	log     *logger.Logger
}

// NewOnRosterChangedHandler creates a new OnRosterChangedHandler.
func NewOnRosterChangedHandler(cache student.Cache, log *logger.Logger) *OnRosterChangedHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &OnRosterChangedHandler{
		cache:   cache,
		timeout: 2 * time.Second,
		log:     log.With(logger.Component("eventhandler"), logger.Operation("roster_changed")),
	}
}

// Handle invalidates the cache for roster events and ignores the rest.
func (h *OnRosterChangedHandler) Handle(event shared.Event) error {
	switch event.EventType() {
	case shared.EventStudentRegistered, shared.EventLegacyImported:
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.cache.InvalidateAll(ctx); err != nil {
		return err
	}
	h.log.Debug("roster cache invalidated", logger.EventType(string(event.EventType())))
	return nil
}

// Register subscribes the handler to roster events.
func (h *OnRosterChangedHandler) Register(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{shared.EventStudentRegistered, shared.EventLegacyImported} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}
