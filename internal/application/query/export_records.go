package query

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/classroll/attendance-tracker/pkg/logger"
)

// ExportHeader is the first line of every export.
const ExportHeader = "Student,Date,Status"

// ExportRecordsHandler writes the joined ledger as comma separated text.
// Values are not quoted, so a name containing a comma corrupts its line.
// Names are letters and spaces only, so this cannot happen for rows
// written through AddStudent.
type ExportRecordsHandler struct {
	records *GetAllRecordsHandler
	log     *logger.Logger
}

// NewExportRecordsHandler creates a new ExportRecordsHandler.
func NewExportRecordsHandler(records *GetAllRecordsHandler, log *logger.Logger) *ExportRecordsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportRecordsHandler{
		records: records,
		log:     log.With(logger.Component("query"), logger.Operation("export")),
	}
}

// Handle writes the header and one line per record to w and returns the
// number of records written. An empty ledger writes only the header.
func (h *ExportRecordsHandler) Handle(ctx context.Context, w io.Writer) (int, error) {
	rows, err := h.records.Handle(ctx, GetAllRecordsQuery{})
	if err != nil {
		return 0, err
	}
	if err := WriteExport(w, rows); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	h.log.Info("ledger exported", logger.Count("records", len(rows)))
	return len(rows), nil
}

// WriteExport writes rows in export format.
func WriteExport(w io.Writer, rows []JoinedRecordDTO) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ExportHeader + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := bw.WriteString(strings.Join([]string{r.StudentName, r.Date, r.Status}, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseExport reads export text back into rows by splitting on commas.
func ParseExport(r io.Reader) ([]JoinedRecordDTO, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("export: missing header")
	}
	if sc.Text() != ExportHeader {
		return nil, fmt.Errorf("export: unexpected header %q", sc.Text())
	}

	rows := make([]JoinedRecordDTO, 0)
	line := 1
	for sc.Scan() {
		line++
		if sc.Text() == "" {
			continue
		}
		parts := strings.Split(sc.Text(), ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("export: line %d has %d fields", line, len(parts))
		}
		rows = append(rows, JoinedRecordDTO{StudentName: parts[0], Date: parts[1], Status: parts[2]})
	}
	return rows, sc.Err()
}
