package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/application/command"
	"github.com/classroll/attendance-tracker/internal/domain/attendance"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/testutil"
)

func newMarkAll(store attendance.Store, policy attendance.BulkPolicy, pub shared.EventPublisher) *command.MarkAllPresentHandler {
	return command.NewMarkAllPresentHandler(store, testutil.Clock(), pub, nil,
		command.MarkAllPresentHandlerConfig{Policy: policy})
}

func TestMarkAllPresent_FreshDate(t *testing.T) {
	store := testutil.SQLiteStore(t)
	students := seedStudents(t, store, "Alice", "Bob", "Carol", "Dave")
	pub := &testutil.RecordingPublisher{}

	res, err := newMarkAll(store, attendance.PolicyOverwrite, pub).
		Handle(context.Background(), command.MarkAllPresentCommand{Date: "2024-01-10"})
	require.NoError(t, err)

	assert.Equal(t, len(students), res.Marked)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Absent)
	assert.Equal(t, len(students), countRecords(t, store))
	for _, s := range students {
		records := recordsOf(t, store, s.ID)
		require.Len(t, records, 1)
		assert.Equal(t, attendance.StatusPresent, records[0].Status)
		assert.Equal(t, "2024-01-10", records[0].Date)
	}
	assert.Equal(t, []shared.EventType{shared.EventAttendanceDayMarked}, pub.Types())
}

func TestMarkAllPresent_OverwriteReplacesPriorMarks(t *testing.T) {
	store := testutil.SQLiteStore(t)
	students := seedStudents(t, store, "Alice", "Bob")
	mark := command.NewMarkAttendanceHandler(store, testutil.Clock(), nil, nil)
	_, err := mark.Handle(context.Background(), command.MarkAttendanceCommand{StudentID: students[0].ID, Date: "2024-01-10", Status: "absent"})
	require.NoError(t, err)
	_, err = mark.Handle(context.Background(), command.MarkAttendanceCommand{StudentID: students[0].ID, Date: "2024-01-09", Status: "absent"})
	require.NoError(t, err)

	res, err := newMarkAll(store, attendance.PolicyOverwrite, nil).
		Handle(context.Background(), command.MarkAllPresentCommand{Date: "2024-01-10"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Marked)
	assert.Equal(t, 1, res.Removed)
	records := recordsOf(t, store, students[0].ID)
	require.Len(t, records, 2)
	assert.Equal(t, attendance.StatusAbsent, records[0].Status, "other dates untouched")
	assert.Equal(t, attendance.StatusPresent, records[1].Status)
}

func TestMarkAllPresent_SkipKeepsPriorMarks(t *testing.T) {
	store := testutil.SQLiteStore(t)
	students := seedStudents(t, store, "Alice", "Bob", "Carol")
	mark := command.NewMarkAttendanceHandler(store, testutil.Clock(), nil, nil)
	_, err := mark.Handle(context.Background(), command.MarkAttendanceCommand{StudentID: students[1].ID, Date: "2024-01-10", Status: "absent"})
	require.NoError(t, err)

	res, err := newMarkAll(store, attendance.PolicySkip, nil).
		Handle(context.Background(), command.MarkAllPresentCommand{Date: "2024-01-10"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Marked)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Removed)
	assert.Equal(t, attendance.StatusAbsent, recordsOf(t, store, students[1].ID)[0].Status)
	assert.Equal(t, 3, countRecords(t, store))
}

func TestMarkAllPresent_AbsentIDs(t *testing.T) {
	store := testutil.SQLiteStore(t)
	students := seedStudents(t, store, "Alice", "Bob", "Carol")

	res, err := newMarkAll(store, attendance.PolicyOverwrite, nil).Handle(context.Background(), command.MarkAllPresentCommand{
		Date:      "2024-01-10",
		AbsentIDs: []int64{students[2].ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Marked)
	assert.Equal(t, 1, res.Absent)
	assert.Equal(t, attendance.StatusAbsent, recordsOf(t, store, students[2].ID)[0].Status)
	assert.Equal(t, attendance.StatusPresent, recordsOf(t, store, students[0].ID)[0].Status)
}

func TestMarkAllPresent_UnknownAbsentIDRollsBack(t *testing.T) {
	store := testutil.SQLiteStore(t)
	seedStudents(t, store, "Alice", "Bob")

	_, err := newMarkAll(store, attendance.PolicyOverwrite, nil).Handle(context.Background(), command.MarkAllPresentCommand{
		Date:      "2024-01-10",
		AbsentIDs: []int64{404},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStudentNotFound))
	assert.Equal(t, "404", shared.InputOf(err))
	assert.Zero(t, countRecords(t, store))
}

func TestMarkAllPresent_EmptyRoster(t *testing.T) {
	store := testutil.SQLiteStore(t)

	res, err := newMarkAll(store, "", nil).Handle(context.Background(), command.MarkAllPresentCommand{})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15", res.Date)
	assert.Equal(t, attendance.PolicyOverwrite, res.Policy)
	assert.Zero(t, res.Marked)
	assert.Zero(t, res.Skipped)
}

func TestMarkAllPresent_FutureDate(t *testing.T) {
	store := testutil.SQLiteStore(t)
	seedStudents(t, store, "Alice")

	_, err := newMarkAll(store, attendance.PolicyOverwrite, nil).
		Handle(context.Background(), command.MarkAllPresentCommand{Date: "2024-01-16"})
	assert.True(t, errors.Is(err, shared.ErrInvalidDate))
	assert.Zero(t, countRecords(t, store))
}
