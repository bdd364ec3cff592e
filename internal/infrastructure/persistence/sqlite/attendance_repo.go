package sqlite

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// AttendanceRepository implements attendance.Repository for SQLite.
type AttendanceRepository struct {
	q Querier
}

// NewAttendanceRepository creates a repository bound to q.
func NewAttendanceRepository(q Querier) *AttendanceRepository {
	return &AttendanceRepository{q: q}
}

// Create inserts a new record.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO attendance (student_id, date, status) VALUES (?, ?, ?)`,
		rec.StudentID, rec.Date, string(rec.Status),
	)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return nil, attendance.Duplicate(rec.StudentID, rec.Date)
		case IsForeignKeyViolation(err):
			return nil, student.NotFound(rec.StudentID)
		}
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance id: %w", err)
	}

	out := *rec
	out.ID = id
	return &out, nil
}

// Exists reports whether the student has a record for date.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID int64, date string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendance WHERE student_id = ? AND date = ?)`,
		studentID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

// StudentIDsOn returns the students that have a record for date.
func (r *AttendanceRepository) StudentIDsOn(ctx context.Context, date string) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT student_id FROM attendance WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list marked students: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan student id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByDate removes every record for date.
func (r *AttendanceRepository) DeleteByDate(ctx context.Context, date string) (int, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM attendance WHERE date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance for %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

// ListByStudent returns a student's records ordered by date.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]*attendance.Record, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, student_id, date, status
		FROM attendance
		WHERE student_id = ?
		ORDER BY date ASC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		var rec attendance.Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.Status = attendance.Status(status)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// ListJoined reads the reporting view ordered by student name then date.
func (r *AttendanceRepository) ListJoined(ctx context.Context) ([]*attendance.JoinedRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT student_name, date, status
		FROM attendance_with_names
		ORDER BY student_name ASC, date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*attendance.JoinedRecord, 0)
	for rows.Next() {
		var rec attendance.JoinedRecord
		var status string
		if err := rows.Scan(&rec.StudentName, &rec.Date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan joined attendance: %w", err)
		}
		rec.Status = attendance.Status(status)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Count returns the number of records.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return n, nil
}

// InsertWithID inserts rec with its own ID unless that ID is taken.
func (r *AttendanceRepository) InsertWithID(ctx context.Context, rec *attendance.Record) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO attendance (id, student_id, date, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.StudentID, rec.Date, string(rec.Status))
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return false, attendance.Duplicate(rec.StudentID, rec.Date)
		case IsForeignKeyViolation(err):
			return false, student.NotFound(rec.StudentID)
		}
		return false, fmt.Errorf("failed to import attendance %d: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
