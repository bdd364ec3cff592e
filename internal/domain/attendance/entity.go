// Package attendance contains the attendance ledger domain model: one status
// per student per calendar day.
package attendance

import (
	"fmt"
	"strings"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/validation"
)

// Status is the recorded presence of a student on a day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes input (trim, lowercase) and checks it is a known status.
func ParseStatus(input string) (Status, error) {
	if err := validation.Var(input, validation.TagAttendanceStatus); err != nil {
		return "", shared.WithInput(shared.ErrInvalidStatus, input)
	}
	return Status(strings.ToLower(strings.TrimSpace(input))), nil
}

// Record is one row of the ledger. (StudentID, Date) is unique.
type Record struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
}

// JoinedRecord is a record joined with its student's name.
type JoinedRecord struct {
	StudentName string `json:"student_name"`
	Date        string `json:"date"`
	Status      Status `json:"status"`
}

// Duplicate returns ErrDuplicateAttendance for the (studentID, date) pair.
func Duplicate(studentID int64, date string) error {
	return shared.WithInput(shared.ErrDuplicateAttendance, fmt.Sprintf("student %d on %s", studentID, date))
}

// BulkPolicy decides how MarkAllPresent treats a day that already has records.
type BulkPolicy string

const (
	// PolicyOverwrite deletes every record of the day and rewrites the whole roster.
	PolicyOverwrite BulkPolicy = "overwrite"
	// PolicySkip only writes students that have no record for the day.
	PolicySkip BulkPolicy = "skip"
)

// ParseBulkPolicy parses a policy name; empty means PolicyOverwrite.
func ParseBulkPolicy(s string) (BulkPolicy, error) {
	switch BulkPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("attendance: unknown bulk policy %q", s)
	}
}

// BulkResult reports the outcome of marking a whole day.
type BulkResult struct {
	Date    string     `json:"date"`
	Policy  BulkPolicy `json:"policy"`
	Marked  int        `json:"marked"`  // rows written
	Skipped int        `json:"skipped"` // students left untouched (skip policy)
	Absent  int        `json:"absent"`  // of Marked, how many were written absent
	Removed int        `json:"removed"` // rows deleted before rewriting (overwrite policy)
}
