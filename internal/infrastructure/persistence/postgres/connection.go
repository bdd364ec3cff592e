// Package postgres implements the attendance store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnectionClosed indicates the connection pool is closed.
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")

	// ErrNoRows is returned when a query returns no rows.
	ErrNoRows = pgx.ErrNoRows
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION POOL
// ══════════════════════════════════════════════════════════════════════════════

// Config holds PostgreSQL connection configuration.
type Config struct {
	// URL is a postgres:// URL or a key=value DSN.
	URL string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// MinConns is the minimum number of connections in the pool.
	MinConns int32

	// MaxConnLifetime is the maximum lifetime of a connection.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum idle time of a connection.
	MaxConnIdleTime time.Duration

	// ConnectTimeout bounds pool creation and the first successful ping,
	// retries included.
	ConnectTimeout time.Duration

	// ConnectRetry controls how often the first ping is retried.
	ConnectRetry retry.Policy
}

// DefaultConfig returns the pool settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		ConnectRetry:    retry.ConnectPolicy(3),
	}
}

// PoolConfig returns pgxpool configuration.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse database URL: %w", err)
	}

	if c.MaxConns > 0 {
		config.MaxConns = c.MaxConns
	}
	config.MinConns = c.MinConns
	if c.MaxConnLifetime > 0 {
		config.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = c.MaxConnIdleTime
	}
	if c.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}
	return config, nil
}

// Redact returns the connection target without credentials.
func Redact(cfg *pgconn.Config) string {
	user := ""
	if cfg.User != "" {
		user = cfg.User + "@"
	}
	return fmt.Sprintf("postgres://%s%s:%d/%s", user, cfg.Host, cfg.Port, cfg.Database)
}

// Connection represents a PostgreSQL connection pool.
// It implements attendance.Store.
type Connection struct {
	pool     *pgxpool.Pool
	location string
	closed   bool
	mu       sync.RWMutex
}

// Open creates the pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, shared.StorageError("Open", fmt.Errorf("postgres: failed to create connection pool: %w", err))
	}

	err = retry.Do(ctx, cfg.ConnectRetry, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, shared.StorageError("Open", fmt.Errorf("postgres: failed to ping database: %w", err))
	}

	return &Connection{
		pool:     pool,
		location: Redact(&poolConfig.ConnConfig.Config),
	}, nil
}

// Location implements attendance.Store.
func (c *Connection) Location() string {
	return c.location
}

// Close closes the connection pool.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.pool.Close()
	return nil
}

// Ping checks if the database connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}
	return c.pool.Ping(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// DefaultTxOptions returns default transaction options.
func DefaultTxOptions() pgx.TxOptions {
	return pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}
}

// ReadOnlyTxOptions returns read-only transaction options.
func ReadOnlyTxOptions() pgx.TxOptions {
	return pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadOnly,
	}
}

// WithTx executes fn within a transaction.
// The transaction is committed if fn returns nil, rolled back otherwise.
func (c *Connection) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return shared.StorageError("Begin", ErrConnectionClosed)
	}

	tx, err := c.pool.BeginTx(ctx, opts)
	if err != nil {
		return shared.StorageError("Begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return shared.StorageError("Rollback", fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr))
		}
		return shared.StorageError("Exec", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return shared.StorageError("Commit", err)
	}
	return nil
}

// WithinTx implements attendance.Store.
func (c *Connection) WithinTx(ctx context.Context, fn func(uow attendance.UnitOfWork) error) error {
	return c.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(newUnitOfWork(tx))
	})
}

// ReadOnly implements attendance.Store.
func (c *Connection) ReadOnly(ctx context.Context, fn func(uow attendance.UnitOfWork) error) error {
	return c.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
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

// Querier is an interface that both *pgxpool.Pool and pgx.Tx implement.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// IsUniqueViolation checks if the error is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// IsForeignKeyViolation checks if the error is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// IsNoRows checks if the error is a "no rows" error.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
