package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// AttendanceRepository implements attendance.Repository for PostgreSQL.
type AttendanceRepository struct {
	q Querier
}

// NewAttendanceRepository creates a repository bound to q.
func NewAttendanceRepository(q Querier) *AttendanceRepository {
	return &AttendanceRepository{q: q}
}

// Create inserts a new record.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	out := *rec
	err := r.q.QueryRow(ctx,
		`INSERT INTO attendance (student_id, date, status) VALUES ($1, $2, $3) RETURNING id`,
		rec.StudentID, rec.Date, string(rec.Status),
	).Scan(&out.ID)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return nil, attendance.Duplicate(rec.StudentID, rec.Date)
		case IsForeignKeyViolation(err):
			return nil, student.NotFound(rec.StudentID)
		}
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return &out, nil
}

// Exists reports whether the student has a record for date.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID int64, date string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendance WHERE student_id = $1 AND date = $2)`,
		studentID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

// StudentIDsOn returns the students that have a record for date.
func (r *AttendanceRepository) StudentIDsOn(ctx context.Context, date string) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT student_id FROM attendance WHERE date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list marked students: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan student ids: %w", err)
	}
	return ids, nil
}

// DeleteByDate removes every record for date.
func (r *AttendanceRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM attendance WHERE date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance for %s: %w", date, err)
	}
	return int(tag.RowsAffected()), nil
}

// ListByStudent returns a student's records ordered by date.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]*attendance.Record, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, student_id, date, status FROM attendance WHERE student_id = $1 ORDER BY date ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*attendance.Record, error) {
		var rec attendance.Record
		var status string
		err := row.Scan(&rec.ID, &rec.StudentID, &rec.Date, &status)
		rec.Status = attendance.Status(status)
		return &rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return records, nil
}

// ListJoined reads the reporting view ordered by student name, then date.
func (r *AttendanceRepository) ListJoined(ctx context.Context) ([]*attendance.JoinedRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT student_name, date, status
		FROM attendance_with_names
		ORDER BY student_name COLLATE "C" ASC, date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined attendance: %w", err)
	}

	joined, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*attendance.JoinedRecord, error) {
		var jr attendance.JoinedRecord
		var status string
		err := row.Scan(&jr.StudentName, &jr.Date, &status)
		jr.Status = attendance.Status(status)
		return &jr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan joined attendance: %w", err)
	}
	return joined, nil
}

// Count returns the number of records.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return n, nil
}

// InsertWithID inserts rec with its own ID unless that ID is taken, then
// advances the id sequence.
func (r *AttendanceRepository) InsertWithID(ctx context.Context, rec *attendance.Record) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`INSERT INTO attendance (id, student_id, date, status) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.StudentID, rec.Date, string(rec.Status),
	)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return false, attendance.Duplicate(rec.StudentID, rec.Date)
		case IsForeignKeyViolation(err):
			return false, student.NotFound(rec.StudentID)
		}
		return false, fmt.Errorf("failed to import attendance %d: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, syncSequence(ctx, r.q, "attendance")
}
