package student

import (
	"context"
	"time"
)

// Repository defines data access for the roster.
// Implementations run inside the transaction they were obtained from.
type Repository interface {
	// Create inserts a student with the given (already normalized) name and
	// returns it with its assigned ID. A name collision returns ErrDuplicateStudent.
	Create(ctx context.Context, name string) (*Student, error)

	// GetByID returns the student or ErrStudentNotFound.
	GetByID(ctx context.Context, id int64) (*Student, error)

	// List returns all students ordered by name ascending.
	List(ctx context.Context) ([]*Student, error)

	// ListIDs returns the IDs of all students (roster snapshot for bulk operations).
	ListIDs(ctx context.Context) ([]int64, error)

	// Count returns the number of students.
	Count(ctx context.Context) (int, error)

	// InsertWithID inserts s keeping its ID unless a student with that ID exists.
	// It reports whether a row was written.
	InsertWithID(ctx context.Context, s *Student) (bool, error)
}

// Cache defines optional caching of roster reads.
// A miss is reported as (nil, nil).
type Cache interface {
	// Get returns a cached student.
	Get(ctx context.Context, id int64) (*Student, error)

	// Set stores a student.
	Set(ctx context.Context, s *Student, ttl time.Duration) error

	// GetList returns the cached ordered roster.
	GetList(ctx context.Context) ([]*Student, error)

	// SetList stores the ordered roster.
	SetList(ctx context.Context, students []*Student, ttl time.Duration) error

	// InvalidateAll clears every cached roster entry.
	InvalidateAll(ctx context.Context) error
}
