package command

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
	"github.com/classroll/attendance-tracker/pkg/validation"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK ATTENDANCE COMMAND
// Records one student's status for one day. Never overwrites.
// ══════════════════════════════════════════════════════════════════════════════

// MarkAttendanceCommand contains the data to mark one student.
type MarkAttendanceCommand struct {
	// StudentID must reference an existing student.
	StudentID int64 `validate:"gt=0"`

	// Date is YYYY-MM-DD; empty means today.
	Date string

	// Status is "present" or "absent", any letter case.
	Status string

	// CorrelationID for tracing.
	CorrelationID string
}

// MarkAttendanceResult contains the created record.
type MarkAttendanceResult struct {
	Record *attendance.Record
}

// MarkAttendanceHandler handles MarkAttendanceCommand.
type MarkAttendanceHandler struct {
	store          attendance.Store
	clock          timeutil.Clock
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewMarkAttendanceHandler creates a new MarkAttendanceHandler.
func NewMarkAttendanceHandler(
	store attendance.Store,
	clock timeutil.Clock,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *MarkAttendanceHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MarkAttendanceHandler{
		store:          store,
		clock:          clock,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("command"), logger.Operation("mark_attendance")),
	}
}

// Handle validates date, status and student in that order, then inserts.
func (h *MarkAttendanceHandler) Handle(ctx context.Context, cmd MarkAttendanceCommand) (*MarkAttendanceResult, error) {
	date, err := attendance.ResolveDate(cmd.Date, h.clock)
	if err != nil {
		return nil, err
	}

	status, err := attendance.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(cmd); validation.HasFailure(err, "StudentID") {
		return nil, student.NotFound(cmd.StudentID)
	}

	var created *attendance.Record
	err = h.store.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		if _, err := uow.Students().GetByID(ctx, cmd.StudentID); err != nil {
			return err
		}

		exists, err := uow.Records().Exists(ctx, cmd.StudentID, date)
		if err != nil {
			return err
		}
		if exists {
			return attendance.Duplicate(cmd.StudentID, date)
		}

		rec, err := uow.Records().Create(ctx, &attendance.Record{
			StudentID: cmd.StudentID,
			Date:      date,
			Status:    status,
		})
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		h.log.Debug("attendance not marked",
			logger.StudentID(cmd.StudentID), logger.Date(date), logger.Err(err))
		return nil, fmt.Errorf("mark_attendance: %w", err)
	}

	h.log.Info("attendance marked",
		logger.StudentID(created.StudentID), logger.Date(created.Date), logger.Status(string(created.Status)))

	event := attendance.NewMarkedEvent(created, h.clock.Now())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.log, event)

	return &MarkAttendanceResult{Record: created}, nil
}
