package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/logger"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT LEGACY COMMAND
// Adopts the rows of a database file written by the legacy tracker.
// ══════════════════════════════════════════════════════════════════════════════

// LegacyStudent is a students row as stored by the legacy tracker.
type LegacyStudent struct {
	ID   int64
	Name string
}

// LegacyRecord is an attendance row as stored by the legacy tracker.
type LegacyRecord struct {
	ID        int64
	StudentID int64
	Date      string
	Status    string
}

// LegacySnapshot is everything read from a legacy source.
type LegacySnapshot struct {
	Students []LegacyStudent
	Records  []LegacyRecord

	// Unreadable counts rows that could not be read at all (NULL columns).
	Unreadable int
}

// LegacySource loads a snapshot of legacy data.
type LegacySource interface {
	// Name identifies the source in logs and results.
	Name() string

	// Load reads all rows. It must not modify the source.
	Load(ctx context.Context) (*LegacySnapshot, error)
}

// ErrNilLegacySource is returned when the command has no source.
var ErrNilLegacySource = errors.New("import_legacy: source is required")

// ImportLegacyCommand contains the source to import.
type ImportLegacyCommand struct {
	Source LegacySource

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ImportLegacyCommand) Validate() error {
	if c.Source == nil {
		return ErrNilLegacySource
	}
	return nil
}

// ImportLegacyResult contains per-table counts.
type ImportLegacyResult struct {
	Source           string `json:"source"`
	StudentsRead     int    `json:"students_read"`
	StudentsInserted int    `json:"students_inserted"`

	// StudentsRejected counts rows whose name is not a valid roster name.
	// Their records are rejected as records of an unknown student.
	StudentsRejected int `json:"students_rejected"`

	RecordsRead     int `json:"records_read"`
	RecordsInserted int `json:"records_inserted"`

	// RecordsRejected counts rows with a bad date or status, an unknown student,
	// or unreadable columns.
	RecordsRejected int `json:"records_rejected"`
}

// ImportLegacyHandler handles ImportLegacyCommand.
type ImportLegacyHandler struct {
	store          attendance.Store
	clock          timeutil.Clock
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewImportLegacyHandler creates a new ImportLegacyHandler.
func NewImportLegacyHandler(
	store attendance.Store,
	clock timeutil.Clock,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *ImportLegacyHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ImportLegacyHandler{
		store:          store,
		clock:          clock,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("command"), logger.Operation("import_legacy")),
	}
}

// Handle inserts every legacy row whose id is not yet present, keeping ids.
// Running it twice over the same source inserts nothing the second time.
func (h *ImportLegacyHandler) Handle(ctx context.Context, cmd ImportLegacyCommand) (*ImportLegacyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	snap, err := cmd.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("import_legacy: load %s: %w", cmd.Source.Name(), err)
	}

	var result ImportLegacyResult
	err = h.store.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		result = ImportLegacyResult{
			Source:          cmd.Source.Name(),
			StudentsRead:    len(snap.Students),
			RecordsRead:     len(snap.Records) + snap.Unreadable,
			RecordsRejected: snap.Unreadable,
		}

		rejected := map[int64]struct{}{}
		for _, row := range snap.Students {
			name, err := student.NormalizeName(row.Name)
			if err != nil {
				h.log.Debug("legacy student with bad name", logger.StudentID(row.ID), logger.StudentName(row.Name))
				result.StudentsRejected++
				rejected[row.ID] = struct{}{}
				continue
			}
			inserted, err := uow.Students().InsertWithID(ctx, &student.Student{ID: row.ID, Name: name})
			if err != nil {
				return err
			}
			if inserted {
				result.StudentsInserted++
			}
		}

		ids, err := uow.Students().ListIDs(ctx)
		if err != nil {
			return err
		}
		known := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, bad := rejected[id]; !bad {
				known[id] = struct{}{}
			}
		}

		for _, row := range snap.Records {
			rec, ok := h.adopt(row, known)
			if !ok {
				result.RecordsRejected++
				continue
			}
			inserted, err := uow.Records().InsertWithID(ctx, rec)
			if err != nil {
				return err
			}
			if inserted {
				result.RecordsInserted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import_legacy: %w", err)
	}

	h.log.Info("legacy data imported",
		logger.String("source", result.Source),
		logger.Count("students_inserted", result.StudentsInserted),
		logger.Count("students_rejected", result.StudentsRejected),
		logger.Count("records_inserted", result.RecordsInserted),
		logger.Count("records_rejected", result.RecordsRejected),
	)

	event := student.NewLegacyImportedEvent(result.StudentsInserted, result.RecordsInserted, h.clock.Now())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.log, event)

	return &result, nil
}

// adopt converts a legacy row, normalizing status case. Rows that would
// violate the current schema are reported as not adoptable.
func (h *ImportLegacyHandler) adopt(row LegacyRecord, known map[int64]struct{}) (*attendance.Record, bool) {
	if _, ok := known[row.StudentID]; !ok {
		h.log.Debug("legacy record for unknown student", logger.Int64("record_id", row.ID), logger.StudentID(row.StudentID))
		return nil, false
	}
	if err := attendance.ValidateStoredDate(row.Date); err != nil {
		h.log.Debug("legacy record with bad date", logger.Int64("record_id", row.ID), logger.Date(row.Date))
		return nil, false
	}
	status, err := attendance.ParseStatus(row.Status)
	if err != nil {
		h.log.Debug("legacy record with bad status", logger.Int64("record_id", row.ID), logger.Status(row.Status))
		return nil, false
	}
	return &attendance.Record{
		ID:        row.ID,
		StudentID: row.StudentID,
		Date:      row.Date,
		Status:    status,
	}, true
}
