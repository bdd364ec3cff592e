package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/classroll/attendance-tracker/internal/application/command"
)

// LegacySource reads rows from a database file written by the legacy tracker.
// It opens the file read-only and never modifies it.
type LegacySource struct {
	path string
}

// NewLegacySource creates a source for the file at path.
func NewLegacySource(path string) *LegacySource {
	return &LegacySource{path: path}
}

// Name implements command.LegacySource.
func (s *LegacySource) Name() string {
	return s.path
}

// Load implements command.LegacySource.
func (s *LegacySource) Load(ctx context.Context) (*command.LegacySnapshot, error) {
	cfg := DefaultConfig()
	cfg.Path = s.path
	cfg.ReadOnly = true

	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	snap := &command.LegacySnapshot{}
	err = conn.WithTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		if err := loadLegacyStudents(ctx, tx, snap); err != nil {
			return err
		}
		return loadLegacyRecords(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func loadLegacyStudents(ctx context.Context, tx *sql.Tx, snap *command.LegacySnapshot) error {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM students ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacy: read students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row command.LegacyStudent
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return fmt.Errorf("legacy: scan student: %w", err)
		}
		snap.Students = append(snap.Students, row)
	}
	return rows.Err()
}

func loadLegacyRecords(ctx context.Context, tx *sql.Tx, snap *command.LegacySnapshot) error {
	rows, err := tx.QueryContext(ctx, `SELECT id, student_id, date, status FROM attendance ORDER BY id`)
	if err != nil {
		return fmt.Errorf("legacy: read attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row       command.LegacyRecord
			studentID sql.NullInt64
			date      sql.NullString
			status    sql.NullString
		)
		if err := rows.Scan(&row.ID, &studentID, &date, &status); err != nil {
			return fmt.Errorf("legacy: scan attendance: %w", err)
		}
		// The legacy schema allowed NULL columns; such rows cannot be adopted.
		if !studentID.Valid || !date.Valid || !status.Valid {
			snap.Unreadable++
			continue
		}
		row.StudentID = studentID.Int64
		row.Date = date.String
		row.Status = status.String
		snap.Records = append(snap.Records, row)
	}
	return rows.Err()
}
