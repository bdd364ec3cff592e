package attendance

import (
	"context"

	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// Repository defines data access for the ledger.
// Implementations run inside the transaction they were obtained from.
type Repository interface {
	// Create inserts a record and returns it with its assigned ID.
	// A (student, date) collision returns ErrDuplicateAttendance and a missing
	// student returns ErrStudentNotFound.
	Create(ctx context.Context, r *Record) (*Record, error)

	// Exists reports whether the student already has a record for date.
	Exists(ctx context.Context, studentID int64, date string) (bool, error)

	// StudentIDsOn returns the students that have a record for date.
	StudentIDsOn(ctx context.Context, date string) ([]int64, error)

	// DeleteByDate removes every record for date and returns how many were removed.
	DeleteByDate(ctx context.Context, date string) (int, error)

	// ListByStudent returns a student's records ordered by date ascending.
	ListByStudent(ctx context.Context, studentID int64) ([]*Record, error)

	// ListJoined returns all records with student names, ordered by name then date.
	ListJoined(ctx context.Context) ([]*JoinedRecord, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// InsertWithID inserts r keeping its ID unless a record with that ID exists.
	// It reports whether a row was written.
	InsertWithID(ctx context.Context, r *Record) (bool, error)
}

// UnitOfWork exposes both repositories bound to one transaction.
type UnitOfWork interface {
	Students() student.Repository
	Records() Repository
}

// Store opens transactions over the roster and the ledger.
// Every public operation runs in exactly one WithinTx or ReadOnly call: the
// transaction commits when fn returns nil and rolls back otherwise, and the
// connection is released on every path.
type Store interface {
	// WithinTx runs fn in a read-write transaction.
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error

	// ReadOnly runs fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(uow UnitOfWork) error) error

	// Location describes where the data lives (file path or redacted DSN).
	Location() string

	// Tables lists the tables and views of the schema by name.
	Tables(ctx context.Context) ([]string, error)

	// Close releases the underlying connections.
	Close() error
}
