package query

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// RecordDTO is one attendance record of a student.
type RecordDTO struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// GetStudentAttendanceQuery asks for one student's history.
type GetStudentAttendanceQuery struct {
	StudentID int64
}

// GetStudentAttendanceResult contains the history ordered by date.
type GetStudentAttendanceResult struct {
	StudentID   int64       `json:"student_id"`
	StudentName string      `json:"student_name"`
	Records     []RecordDTO `json:"records"`
	Present     int         `json:"present"`
	Absent      int         `json:"absent"`
}

// GetStudentAttendanceHandler handles GetStudentAttendanceQuery.
type GetStudentAttendanceHandler struct {
	store attendance.Store
	log   *logger.Logger
}

// NewGetStudentAttendanceHandler creates a new GetStudentAttendanceHandler.
func NewGetStudentAttendanceHandler(store attendance.Store, log *logger.Logger) *GetStudentAttendanceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetStudentAttendanceHandler{
		store: store,
		log:   log.With(logger.Component("query"), logger.Operation("get_student_attendance")),
	}
}

// Handle returns the student's records; an unknown student is StudentNotFound,
// a known student with no records gets an empty list.
func (h *GetStudentAttendanceHandler) Handle(ctx context.Context, q GetStudentAttendanceQuery) (*GetStudentAttendanceResult, error) {
	result := &GetStudentAttendanceResult{StudentID: q.StudentID, Records: []RecordDTO{}}

	err := h.store.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		s, err := uow.Students().GetByID(ctx, q.StudentID)
		if err != nil {
			return err
		}
		result.StudentName = s.Name

		records, err := uow.Records().ListByStudent(ctx, q.StudentID)
		if err != nil {
			return err
		}
		for _, r := range records {
			result.Records = append(result.Records, RecordDTO{ID: r.ID, Date: r.Date, Status: string(r.Status)})
			if r.Status == attendance.StatusPresent {
				result.Present++
			} else {
				result.Absent++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get_student_attendance: %w", err)
	}

	h.log.Debug("history read", logger.StudentID(q.StudentID), logger.Count("records", len(result.Records)))
	return result, nil
}
