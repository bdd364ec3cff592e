package attendance

import (
	"strconv"
	"time"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
)

// MarkedEvent is emitted when a single attendance record is created.
type MarkedEvent struct {
	shared.BaseEvent
	RecordID  int64  `json:"record_id"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
}

// NewMarkedEvent creates the event for r.
func NewMarkedEvent(r *Record, at time.Time) MarkedEvent {
	return MarkedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventAttendanceMarked, strconv.FormatInt(r.StudentID, 10), at),
		RecordID:  r.ID,
		StudentID: r.StudentID,
		Date:      r.Date,
		Status:    r.Status,
	}
}

// Payload implements shared.Event.
func (e MarkedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"record_id":  e.RecordID,
		"student_id": e.StudentID,
		"date":       e.Date,
		"status":     string(e.Status),
	}
}

// DayMarkedEvent is emitted after a bulk mark of a whole day.
type DayMarkedEvent struct {
	shared.BaseEvent
	Result BulkResult `json:"result"`
}

// NewDayMarkedEvent creates the event for res.
func NewDayMarkedEvent(res BulkResult, at time.Time) DayMarkedEvent {
	return DayMarkedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventAttendanceDayMarked, res.Date, at),
		Result:    res,
	}
}

// Payload implements shared.Event.
func (e DayMarkedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"date":    e.Result.Date,
		"policy":  string(e.Result.Policy),
		"marked":  e.Result.Marked,
		"skipped": e.Result.Skipped,
		"absent":  e.Result.Absent,
		"removed": e.Result.Removed,
	}
}
