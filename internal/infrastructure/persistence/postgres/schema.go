package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schemaSQL creates the roster, the ledger and the reporting view if missing.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id),
    date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('present', 'absent')),
    UNIQUE(student_id, date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);

CREATE OR REPLACE VIEW attendance_with_names AS
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
	return c.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("postgres: create schema: %w", err)
		}
		return nil
	})
}

// Tables implements attendance.Store.
func (c *Connection) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := c.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema()
			ORDER BY table_name COLLATE "C"
		`)
		if err != nil {
			return fmt.Errorf("postgres: list tables: %w", err)
		}
		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("postgres: scan table names: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// syncSequence moves the id sequence of table past its largest id so rows
// inserted with explicit ids do not collide with generated ones.
func syncSequence(ctx context.Context, q Querier, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))`,
		table,
	)
	if _, err := q.Exec(ctx, query); err != nil {
		return fmt.Errorf("postgres: sync %s sequence: %w", table, err)
	}
	return nil
}
