// Package command contains write operations (CQRS - Commands).
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
// ADD STUDENT COMMAND
// Registers a new student on the roster.
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand contains the data to register a student.
type AddStudentCommand struct {
	// Name is the raw name as typed; it is trimmed before validation.
	Name string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AddStudentCommand) Validate() error {
	_, err := student.NormalizeName(c.Name)
	return err
}

// AddStudentResult contains the registered student.
type AddStudentResult struct {
	Student *student.Student
}

// AddStudentHandler handles AddStudentCommand.
type AddStudentHandler struct {
	store          attendance.Store
	clock          timeutil.Clock
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewAddStudentHandler creates a new AddStudentHandler.
func NewAddStudentHandler(
	store attendance.Store,
	clock timeutil.Clock,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *AddStudentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AddStudentHandler{
		store:          store,
		clock:          clock,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("command"), logger.Operation("add_student")),
	}
}

// Handle executes the add student command.
// The unique constraint on names is authoritative; there is no pre-check.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	name, err := student.NormalizeName(cmd.Name)
	if err != nil {
		h.log.Debug("rejected student name", logger.StudentName(cmd.Name))
		return nil, err
	}

	var created *student.Student
	err = h.store.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		s, err := uow.Students().Create(ctx, name)
		if err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	h.log.Info("student added", logger.StudentID(created.ID), logger.StudentName(created.Name))

	event := student.NewStudentRegisteredEvent(created, h.clock.Now())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.log, event)

	return &AddStudentResult{Student: created}, nil
}

// publish sends event and logs failures; a subscriber error never fails the command.
func publish(p shared.EventPublisher, log *logger.Logger, event shared.Event) {
	if err := p.Publish(event); err != nil {
		log.Warn("event publish failed", logger.EventType(string(event.EventType())), logger.Err(err))
	}
}
