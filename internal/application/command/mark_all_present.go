package command

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK ALL PRESENT COMMAND
// Marks the whole roster for one day in a single transaction.
// ══════════════════════════════════════════════════════════════════════════════

// MarkAllPresentCommand contains the data to mark a whole day.
type MarkAllPresentCommand struct {
	// Date is YYYY-MM-DD; empty means today.
	Date string

	// AbsentIDs are written as absent instead of present. Each must exist.
	AbsentIDs []int64

	// CorrelationID for tracing.
	CorrelationID string
}

// MarkAllPresentHandlerConfig contains configuration for the handler.
type MarkAllPresentHandlerConfig struct {
	Policy attendance.BulkPolicy
}

// DefaultMarkAllPresentHandlerConfig returns the overwrite policy.
func DefaultMarkAllPresentHandlerConfig() MarkAllPresentHandlerConfig {
	return MarkAllPresentHandlerConfig{Policy: attendance.PolicyOverwrite}
}

// MarkAllPresentHandler handles MarkAllPresentCommand.
type MarkAllPresentHandler struct {
	store          attendance.Store
	clock          timeutil.Clock
	eventPublisher shared.EventPublisher
	log            *logger.Logger
	policy         attendance.BulkPolicy
}

// NewMarkAllPresentHandler creates a new MarkAllPresentHandler.
func NewMarkAllPresentHandler(
	store attendance.Store,
	clock timeutil.Clock,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
	config MarkAllPresentHandlerConfig,
) *MarkAllPresentHandler {
	if config.Policy == "" {
		config = DefaultMarkAllPresentHandlerConfig()
	}
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MarkAllPresentHandler{
		store:          store,
		clock:          clock,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("command"), logger.Operation("mark_all_present")),
		policy:         config.Policy,
	}
}

// Handle marks every current student for the day according to the policy.
func (h *MarkAllPresentHandler) Handle(ctx context.Context, cmd MarkAllPresentCommand) (*attendance.BulkResult, error) {
	date, err := attendance.ResolveDate(cmd.Date, h.clock)
	if err != nil {
		return nil, err
	}

	absent := make(map[int64]struct{}, len(cmd.AbsentIDs))
	for _, id := range cmd.AbsentIDs {
		absent[id] = struct{}{}
	}

	result := attendance.BulkResult{Date: date, Policy: h.policy}
	err = h.store.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		roster, err := uow.Students().ListIDs(ctx)
		if err != nil {
			return err
		}
		if err := checkAbsentees(roster, cmd.AbsentIDs); err != nil {
			return err
		}

		alreadyMarked := map[int64]struct{}{}
		switch h.policy {
		case attendance.PolicyOverwrite:
			removed, err := uow.Records().DeleteByDate(ctx, date)
			if err != nil {
				return err
			}
			result.Removed = removed
		case attendance.PolicySkip:
			ids, err := uow.Records().StudentIDsOn(ctx, date)
			if err != nil {
				return err
			}
			for _, id := range ids {
				alreadyMarked[id] = struct{}{}
			}
		default:
			return fmt.Errorf("unknown bulk policy %q", h.policy)
		}

		for _, id := range roster {
			if _, ok := alreadyMarked[id]; ok {
				result.Skipped++
				continue
			}

			status := attendance.StatusPresent
			if _, ok := absent[id]; ok {
				status = attendance.StatusAbsent
			}
			if _, err := uow.Records().Create(ctx, &attendance.Record{
				StudentID: id,
				Date:      date,
				Status:    status,
			}); err != nil {
				return err
			}

			result.Marked++
			if status == attendance.StatusAbsent {
				result.Absent++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark_all_present: %w", err)
	}

	h.log.Info("day marked",
		logger.Date(date),
		logger.String("policy", string(h.policy)),
		logger.Count("marked", result.Marked),
		logger.Count("skipped", result.Skipped),
		logger.Count("absent", result.Absent),
	)

	event := attendance.NewDayMarkedEvent(result, h.clock.Now())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.log, event)

	return &result, nil
}

func checkAbsentees(roster, absentIDs []int64) error {
	known := make(map[int64]struct{}, len(roster))
	for _, id := range roster {
		known[id] = struct{}{}
	}
	for _, id := range absentIDs {
		if _, ok := known[id]; !ok {
			return student.NotFound(id)
		}
	}
	return nil
}
