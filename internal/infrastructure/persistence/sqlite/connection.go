// Package sqlite implements the file-based persistence layer of the attendance
// tracker on top of database/sql and github.com/mattn/go-sqlite3.
//
// The database is a single local file opened with foreign keys enforced and a
// WAL journal. Every operation runs in its own transaction obtained through
// Connection.WithinTx or Connection.ReadOnly; the pool is capped at one
// connection so SQLite's single-writer rule never surfaces as SQLITE_BUSY.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
)

var (
	// ErrConnectionClosed indicates the database handle is closed.
	ErrConnectionClosed = errors.New("sqlite: connection is closed")
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// Config holds SQLite connection configuration.
type Config struct {
	// Path is the database file. It is created on first use.
	Path string

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration

	// ReadOnly opens the file without write access (used for legacy sources).
	ReadOnly bool
}

// DefaultConfig returns the configuration for the default database file.
func DefaultConfig() Config {
	return Config{
		Path:        "attendance.db",
		BusyTimeout: 5 * time.Second,
	}
}

// DSN returns the go-sqlite3 connection string.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprintf("%d", c.BusyTimeout.Milliseconds()))
	if c.ReadOnly {
		q.Set("mode", "ro")
	} else {
		q.Set("_journal_mode", "WAL")
	}
	// '?', '#' and '%' in the path are percent-encoded; SQLite decodes them.
	path := (&url.URL{Path: c.Path}).EscapedPath()
	return "file:" + path + "?" + q.Encode()
}

// Connection wraps the database handle and implements attendance.Store.
type Connection struct {
	db     *sql.DB
	config Config
	closed bool
	mu     sync.RWMutex
}

var _ attendance.Store = (*Connection)(nil)

// Open opens (creating if needed) the database file and verifies it is reachable.
// It does not create the schema; call EnsureSchema for that.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}

	db, err := sql.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, shared.StorageError("Open", fmt.Errorf("sqlite: open %s: %w", cfg.Path, err))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, shared.StorageError("Open", fmt.Errorf("sqlite: ping %s: %w", cfg.Path, err))
	}

	return &Connection{db: db, config: cfg}, nil
}

// Location returns the absolute path of the database file.
func (c *Connection) Location() string {
	abs, err := filepath.Abs(c.config.Path)
	if err != nil {
		return c.config.Path
	}
	return abs
}

// Close closes the database handle. It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

// Ping checks that the database is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}
	return c.db.PingContext(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// WithTx executes fn within a transaction.
// The transaction is committed if fn returns nil and rolled back otherwise,
// including when fn panics.
func (c *Connection) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return shared.StorageError("Begin", ErrConnectionClosed)
	}

	tx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return shared.StorageError("Begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return shared.StorageError("Rollback", fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr))
		}
		return shared.StorageError("Exec", err)
	}

	if err := tx.Commit(); err != nil {
		return shared.StorageError("Commit", err)
	}
	return nil
}

// WithinTx implements attendance.Store.
func (c *Connection) WithinTx(ctx context.Context, fn func(uow attendance.UnitOfWork) error) error {
	return c.WithTx(ctx, nil, func(tx *sql.Tx) error {
		return fn(newUnitOfWork(tx))
	})
}

// ReadOnly implements attendance.Store.
func (c *Connection) ReadOnly(ctx context.Context, fn func(uow attendance.UnitOfWork) error) error {
	return c.WithTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		return fn(newUnitOfWork(tx))
	})
}

type unitOfWork struct {
	students *StudentRepository
	records  *AttendanceRepository
}

func newUnitOfWork(q Querier) *unitOfWork {
	return &unitOfWork{
		students: NewStudentRepository(q),
		records:  NewAttendanceRepository(q),
	}
}

func (u *unitOfWork) Students() student.Repository  { return u.students }
func (u *unitOfWork) Records() attendance.Repository { return u.records }

// ══════════════════════════════════════════════════════════════════════════════
// QUERY HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Querier is implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func constraintCode(err error) (sqlite3.ErrNoExtended, bool) {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return se.ExtendedCode, true
	}
	return 0, false
}

// IsUniqueViolation checks if the error is a UNIQUE or PRIMARY KEY violation.
func IsUniqueViolation(err error) bool {
	code, ok := constraintCode(err)
	return ok && (code == sqlite3.ErrConstraintUnique || code == sqlite3.ErrConstraintPrimaryKey)
}

// IsForeignKeyViolation checks if the error is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	code, ok := constraintCode(err)
	return ok && code == sqlite3.ErrConstraintForeignKey
}

// IsNoRows checks if the error is a "no rows" error.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
