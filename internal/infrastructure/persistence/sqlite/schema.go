package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaSQL creates the roster, the ledger and the reporting view if missing.
// It is compatible with databases created by the legacy tracker, whose tables
// have the same names and columns.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('present', 'absent')),
    UNIQUE(student_id, date),
    FOREIGN KEY(student_id) REFERENCES students(id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);

CREATE VIEW IF NOT EXISTS attendance_with_names AS
SELECT
    a.id AS attendance_id,
    a.student_id,
    s.name AS student_name,
    a.date,
    a.status
FROM attendance a
JOIN students s ON a.student_id = s.id;
`

// EnsureSchema creates missing tables, indexes and the reporting view.
func (c *Connection) EnsureSchema(ctx context.Context) error {
	return c.WithTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("sqlite: create schema: %w", err)
		}
		return nil
	})
}

// Tables implements attendance.Store.
func (c *Connection) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := c.WithTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT name FROM sqlite_master
			WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`)
		if err != nil {
			return fmt.Errorf("sqlite: list tables: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("sqlite: scan table name: %w", err)
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
