package sqlite

import (
	"context"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// StudentRepository implements student.Repository for SQLite.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a repository bound to q (a transaction or the pool).
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q}
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, name string) (*student.Student, error) {
	res, err := r.q.ExecContext(ctx, `INSERT INTO students (name) VALUES (?)`, name)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, student.Duplicate(name)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read student id: %w", err)
	}
	return &student.Student{ID: id, Name: name}, nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	var s student.Student
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM students WHERE id = ?`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if IsNoRows(err) {
			return nil, student.NotFound(id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// List returns all students ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM students ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := make([]*student.Student, 0)
	for rows.Next() {
		var s student.Student
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, &s)
	}
	return students, rows.Err()
}

// ListIDs returns every student ID.
func (r *StudentRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
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

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

// InsertWithID inserts s with its own ID unless that ID is taken.
func (r *StudentRepository) InsertWithID(ctx context.Context, s *student.Student) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO students (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		s.ID, s.Name,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, student.Duplicate(s.Name)
		}
		return false, fmt.Errorf("failed to import student %d: %w", s.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
