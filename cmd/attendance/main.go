// Package main is the command line entry point of the attendance tracker.
//
// Every invocation opens the store, runs one subcommand and exits. Command
// output goes to stdout; structured logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/classroll/attendance-tracker/config"
	"github.com/classroll/attendance-tracker/internal/application/command"
	"github.com/classroll/attendance-tracker/internal/application/eventhandler"
	"github.com/classroll/attendance-tracker/internal/application/query"
	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
	"github.com/classroll/attendance-tracker/internal/infrastructure/messaging"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/postgres"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/redis"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/classroll/attendance-tracker/pkg/logger"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
)

// errUsage marks errors caused by bad command line arguments.
var errUsage = errors.New("usage")

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// errorMessage prefixes err with the kind of failure an operator should act on.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "usage error: " + err.Error()
	case shared.IsValidation(err):
		return "invalid input: " + err.Error()
	case shared.IsNotFound(err):
		return "not found: " + err.Error()
	case shared.IsAlreadyExists(err):
		return "already exists: " + err.Error()
	case shared.IsStorage(err):
		return "storage unavailable: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	requestID := uuid.NewString()
	log := logger.New(logger.Options{
		Output:    stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.Format(cfg.Observability.LogFormat),
		AddCaller: cfg.IsDevelopment(),
	}).WithRequestID(requestID)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. WIRING
	// ─────────────────────────────────────────────────────────────────────────
	a, err := newApp(ctx, cfg, log, requestID)
	if err != nil {
		return err
	}
	defer a.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DISPATCH
	// ─────────────────────────────────────────────────────────────────────────
	log.Debug("running command", logger.Operation(args[0]))
	return cmd.run(ctx, a, args[1:], stdout)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app holds the handlers of one invocation.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	requestID string
	store     attendance.Store
	bus       *messaging.InMemoryEventBus
	closers   []func() error

	addStudent     *command.AddStudentHandler
	markAttendance *command.MarkAttendanceHandler
	markAll        *command.MarkAllPresentHandler
	importLegacy   *command.ImportLegacyHandler

	listStudents *query.ListStudentsHandler
	getStudent   *query.GetStudentHandler
	history      *query.GetStudentAttendanceHandler
	allRecords   *query.GetAllRecordsHandler
	stats        *query.GetStatsHandler
	export       *query.ExportRecordsHandler
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, requestID string) (*app, error) {
	a := &app{cfg: cfg, log: log, requestID: requestID}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	a.bus = messaging.NewInMemoryEventBus(log)
	a.closers = append(a.closers, a.bus.Close)
	if err := eventhandler.NewRecordActivityHandler(log).Register(a.bus); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to register activity handler: %w", err)
	}

	var cache student.Cache
	if cfg.Redis.Enabled {
		c, err := openCache(ctx, cfg)
		if err != nil {
			log.Warn("roster cache unavailable, continuing without it", logger.Err(err))
		} else {
			a.closers = append(a.closers, c.Close)
			cache = redis.NewStudentCache(c)
			if err := eventhandler.NewOnRosterChangedHandler(cache, log).Register(a.bus); err != nil {
				a.close()
				return nil, fmt.Errorf("failed to register cache handler: %w", err)
			}
		}
	}

	policy, err := attendance.ParseBulkPolicy(cfg.Attendance.BulkPolicy)
	if err != nil {
		a.close()
		return nil, err
	}

	clock := timeutil.NewSystemClock(cfg.App.Location)
	rosterCfg := query.RosterHandlerConfig{CacheTTL: cfg.Redis.CacheTTL}

	a.addStudent = command.NewAddStudentHandler(store, clock, a.bus, log)
	a.markAttendance = command.NewMarkAttendanceHandler(store, clock, a.bus, log)
	a.markAll = command.NewMarkAllPresentHandler(store, clock, a.bus, log, command.MarkAllPresentHandlerConfig{Policy: policy})
	a.importLegacy = command.NewImportLegacyHandler(store, clock, a.bus, log)

	a.listStudents = query.NewListStudentsHandler(store, cache, rosterCfg, log)
	a.getStudent = query.NewGetStudentHandler(store, cache, rosterCfg, log)
	a.history = query.NewGetStudentAttendanceHandler(store, log)
	a.allRecords = query.NewGetAllRecordsHandler(store, log)
	a.stats = query.NewGetStatsHandler(store)
	a.export = query.NewExportRecordsHandler(a.allRecords, log)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", logger.Err(err))
		}
	}
	a.closers = nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (attendance.Store, error) {
	if cfg.UsesPostgres() {
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		pgCfg.MinConns = int32(cfg.Database.MinConns)
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout
		pgCfg.ConnectRetry.Attempts = cfg.Database.ConnectAttempts
		pgCfg.ConnectRetry.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("database not reachable, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}

		conn, err := postgres.Open(ctx, pgCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := conn.EnsureSchema(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
		log.Debug("store opened", logger.StorageDriver(config.DriverPostgres), logger.String("location", conn.Location()))
		return conn, nil
	}

	sqlCfg := sqlite.DefaultConfig()
	sqlCfg.Path = cfg.Storage.SQLitePath
	sqlCfg.BusyTimeout = cfg.Storage.SQLiteBusyTimeout

	conn, err := sqlite.Open(ctx, sqlCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debug("store opened", logger.StorageDriver(config.DriverSQLite), logger.String("location", conn.Location()))
	return conn, nil
}

func openCache(ctx context.Context, cfg *config.Config) (*redis.Cache, error) {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.KeyPrefix = cfg.Redis.KeyPrefix
	rc.DialTimeout = cfg.Redis.DialTimeout
	return redis.NewCache(ctx, rc)
}
