package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/classroll/attendance-tracker/internal/testutil"
)

func TestConfig_DSN(t *testing.T) {
	cfg := sqlite.DefaultConfig()
	assert.Contains(t, cfg.DSN(), "_foreign_keys=on")
	assert.Contains(t, cfg.DSN(), "_journal_mode=WAL")

	cfg.ReadOnly = true
	assert.Contains(t, cfg.DSN(), "mode=ro")
	assert.NotContains(t, cfg.DSN(), "_journal_mode")
}

func TestConfig_DSNEscapesPath(t *testing.T) {
	cfg := sqlite.DefaultConfig()
	cfg.Path = "/data/roll?call#1%.db"

	assert.True(t, strings.HasPrefix(cfg.DSN(), "file:/data/roll%3Fcall%231%25.db?"), cfg.DSN())
}

func TestOpen_PathWithQueryCharacters(t *testing.T) {
	ctx := context.Background()
	cfg := sqlite.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "roll?call#1.db")

	conn, err := sqlite.Open(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.EnsureSchema(ctx))

	_, err = os.Stat(cfg.Path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.Path, conn.Location())
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SQLiteStore(t)

	require.NoError(t, conn.EnsureSchema(ctx))

	names, err := conn.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance", "attendance_with_names", "students"}, names)
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SQLiteStore(t)

	err := conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		for _, name := range []string{"Bob Jones", "Alice Smith"} {
			if _, err := uow.Students().Create(ctx, name); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		_, err := uow.Students().Create(ctx, "Alice Smith")
		return err
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateStudent)

	err = conn.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		list, err := uow.Students().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Alice Smith", list[0].Name)
		assert.Equal(t, int64(2), list[0].ID)

		ids, err := uow.Students().ListIDs(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2}, ids)

		_, err = uow.Students().GetByID(ctx, 42)
		assert.ErrorIs(t, err, shared.ErrStudentNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestAttendanceRepository(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SQLiteStore(t)

	err := conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		alice, err := uow.Students().Create(ctx, "Alice Smith")
		if err != nil {
			return err
		}
		bob, err := uow.Students().Create(ctx, "Bob Jones")
		if err != nil {
			return err
		}
		for _, rec := range []*attendance.Record{
			{StudentID: bob.ID, Date: "2024-01-11", Status: attendance.StatusAbsent},
			{StudentID: bob.ID, Date: "2024-01-10", Status: attendance.StatusPresent},
			{StudentID: alice.ID, Date: "2024-01-10", Status: attendance.StatusPresent},
		} {
			if _, err := uow.Records().Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		_, err := uow.Records().Create(ctx, &attendance.Record{StudentID: 1, Date: "2024-01-10", Status: attendance.StatusAbsent})
		return err
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateAttendance)

	err = conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		_, err := uow.Records().Create(ctx, &attendance.Record{StudentID: 99, Date: "2024-01-10", Status: attendance.StatusAbsent})
		return err
	})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)

	err = conn.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		history, err := uow.Records().ListByStudent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "2024-01-10", history[0].Date)
		assert.Equal(t, "2024-01-11", history[1].Date)

		joined, err := uow.Records().ListJoined(ctx)
		require.NoError(t, err)
		require.Len(t, joined, 3)
		assert.Equal(t, attendance.JoinedRecord{StudentName: "Alice Smith", Date: "2024-01-10", Status: attendance.StatusPresent}, *joined[0])
		assert.Equal(t, "Bob Jones", joined[2].StudentName)
		assert.Equal(t, "2024-01-11", joined[2].Date)

		ok, err := uow.Records().Exists(ctx, 2, "2024-01-11")
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := uow.Records().StudentIDsOn(ctx, "2024-01-10")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2}, ids)
		return nil
	})
	require.NoError(t, err)

	err = conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		n, err := uow.Records().DeleteByDate(ctx, "2024-01-10")
		assert.Equal(t, 2, n)
		return err
	})
	require.NoError(t, err)

	err = conn.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		n, err := uow.Records().Count(ctx)
		assert.Equal(t, 1, n)
		return err
	})
	require.NoError(t, err)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SQLiteStore(t)
	boom := errors.New("boom")

	err := conn.WithinTx(ctx, func(uow attendance.UnitOfWork) error {
		if _, err := uow.Students().Create(ctx, "Alice Smith"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, shared.IsStorage(err))

	err = conn.ReadOnly(ctx, func(uow attendance.UnitOfWork) error {
		n, err := uow.Students().Count(ctx)
		assert.Zero(t, n)
		return err
	})
	require.NoError(t, err)
}

func TestClosedConnection(t *testing.T) {
	ctx := context.Background()
	cfg := sqlite.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "closed.db")

	conn, err := sqlite.Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	err = conn.WithinTx(ctx, func(attendance.UnitOfWork) error { return nil })
	assert.True(t, shared.IsStorage(err))

	_, err = conn.Tables(ctx)
	assert.True(t, shared.IsStorage(err))
}
