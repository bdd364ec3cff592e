package student

import (
	"strconv"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
)

// StudentRegisteredEvent is emitted when a student is added to the roster.
type StudentRegisteredEvent struct {
	shared.BaseEvent
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
}

// NewStudentRegisteredEvent creates the event for s.
func NewStudentRegisteredEvent(s *Student, at time.Time) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStudentRegistered, strconv.FormatInt(s.ID, 10), at),
		StudentID: s.ID,
		Name:      s.Name,
	}
}

// Payload implements shared.Event.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"name":       e.Name,
	}
}

// LegacyImportedEvent is emitted after a legacy import wrote at least one row.
type LegacyImportedEvent struct {
	shared.BaseEvent
	StudentsInserted int `json:"students_inserted"`
	RecordsInserted  int `json:"records_inserted"`
}

// NewLegacyImportedEvent creates the event.
func NewLegacyImportedEvent(students, records int, at time.Time) LegacyImportedEvent {
	return LegacyImportedEvent{
		BaseEvent:        shared.NewBaseEvent(shared.EventLegacyImported, "roster", at),
		StudentsInserted: students,
		RecordsInserted:  records,
	}
}

// Payload implements shared.Event.
func (e LegacyImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"students_inserted": e.StudentsInserted,
		"records_inserted":  e.RecordsInserted,
	}
}
