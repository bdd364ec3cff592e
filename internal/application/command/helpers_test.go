package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/student"
)

func countStudents(t *testing.T, store attendance.Store) int {
	t.Helper()
	var n int
	require.NoError(t, store.ReadOnly(context.Background(), func(uow attendance.UnitOfWork) error {
		var err error
		n, err = uow.Students().Count(context.Background())
		return err
	}))
	return n
}

func countRecords(t *testing.T, store attendance.Store) int {
	t.Helper()
	var n int
	require.NoError(t, store.ReadOnly(context.Background(), func(uow attendance.UnitOfWork) error {
		var err error
		n, err = uow.Records().Count(context.Background())
		return err
	}))
	return n
}

func recordsOf(t *testing.T, store attendance.Store, id int64) []*attendance.Record {
	t.Helper()
	var out []*attendance.Record
	require.NoError(t, store.ReadOnly(context.Background(), func(uow attendance.UnitOfWork) error {
		var err error
		out, err = uow.Records().ListByStudent(context.Background(), id)
		return err
	}))
	return out
}

func seedStudents(t *testing.T, store attendance.Store, names ...string) []*student.Student {
	t.Helper()
	out := make([]*student.Student, 0, len(names))
	require.NoError(t, store.WithinTx(context.Background(), func(uow attendance.UnitOfWork) error {
		for _, name := range names {
			s, err := uow.Students().Create(context.Background(), name)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	}))
	return out
}
