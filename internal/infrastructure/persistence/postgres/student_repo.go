package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classroll/attendance-tracker/internal/domain/student"
)

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a repository bound to q.
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q}
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, name string) (*student.Student, error) {
	s := &student.Student{Name: name}
	err := r.q.QueryRow(ctx, `INSERT INTO students (name) VALUES ($1) RETURNING id`, name).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, student.Duplicate(name)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return s, nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	var s student.Student
	err := r.q.QueryRow(ctx, `SELECT id, name FROM students WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if IsNoRows(err) {
			return nil, student.NotFound(id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// List returns all students ordered by name, byte-wise like SQLite.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM students ORDER BY name COLLATE "C" ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*student.Student, error) {
		var s student.Student
		err := row.Scan(&s.ID, &s.Name)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan students: %w", err)
	}
	return students, nil
}

// ListIDs returns every student ID.
func (r *StudentRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan student ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

// InsertWithID inserts s with its own ID unless that ID is taken, then
// advances the id sequence.
func (r *StudentRepository) InsertWithID(ctx context.Context, s *student.Student) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`INSERT INTO students (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		s.ID, s.Name,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, student.Duplicate(s.Name)
		}
		return false, fmt.Errorf("failed to import student %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, syncSequence(ctx, r.q, "students")
}
