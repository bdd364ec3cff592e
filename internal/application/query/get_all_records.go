package query

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/pkg/logger"
)

// JoinedRecordDTO is one row of the ledger joined with student names.
type JoinedRecordDTO struct {
	StudentName string `json:"student_name"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// GetAllRecordsQuery has no parameters.
type GetAllRecordsQuery struct{}

// GetAllRecordsHandler handles GetAllRecordsQuery.
type GetAllRecordsHandler struct {
	store attendance.Store
	log   *logger.Logger
}

// NewGetAllRecordsHandler creates a new GetAllRecordsHandler.
func NewGetAllRecordsHandler(store attendance.Store, log *logger.Logger) *GetAllRecordsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetAllRecordsHandler{
		store: store,
		log:   log.With(logger.Component("query"), logger.Operation("get_all_records")),
	}
}

// Handle returns every record ordered by student name, then date.
func (h *GetAllRecordsHandler) Handle(ctx context.Context, _ GetAllRecordsQuery) ([]JoinedRecordDTO, error) {
	var rows []*attendance.JoinedRecord
	err := h.store.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		var err error
		rows, err = uow.Records().ListJoined(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get_all_records: %w", err)
	}

	out := make([]JoinedRecordDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, JoinedRecordDTO{StudentName: r.StudentName, Date: r.Date, Status: string(r.Status)})
	}
	return out, nil
}
