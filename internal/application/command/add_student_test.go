package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/application/command"
	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/testutil"
)

func TestAddStudent_TrimsAndStores(t *testing.T) {
	store := testutil.SQLiteStore(t)
	pub := &testutil.RecordingPublisher{}
	h := command.NewAddStudentHandler(store, testutil.Clock(), pub, nil)

	res, err := h.Handle(context.Background(), command.AddStudentCommand{Name: "  Alice Smith "})
	require.NoError(t, err)

	assert.Equal(t, "Alice Smith", res.Student.Name)
	assert.Positive(t, res.Student.ID)
	assert.Equal(t, []shared.EventType{shared.EventStudentRegistered}, pub.Types())
}

func TestAddStudent_DuplicateLeavesCountUnchanged(t *testing.T) {
	store := testutil.SQLiteStore(t)
	h := command.NewAddStudentHandler(store, testutil.Clock(), nil, nil)

	for _, name := range []string{"Alice", "Bob Jones", "Zoë Ångström", "Mary Ann Lee"} {
		_, err := h.Handle(context.Background(), command.AddStudentCommand{Name: name})
		require.NoError(t, err, name)

		before := countStudents(t, store)
		_, err = h.Handle(context.Background(), command.AddStudentCommand{Name: name})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, shared.ErrDuplicateStudent), name)
		assert.Equal(t, name, shared.InputOf(err))
		assert.Equal(t, before, countStudents(t, store))
	}
}

func TestAddStudent_InvalidNameNoWrite(t *testing.T) {
	store := testutil.SQLiteStore(t)
	pub := &testutil.RecordingPublisher{}
	h := command.NewAddStudentHandler(store, testutil.Clock(), pub, nil)

	for _, name := range []string{"", "   ", "Bob1", "O'Brien", "Smith-Jones", "R2D2", "a,b", "x@y"} {
		_, err := h.Handle(context.Background(), command.AddStudentCommand{Name: name})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, shared.ErrInvalidName), name)
		assert.Equal(t, name, shared.InputOf(err))
	}

	assert.Zero(t, countStudents(t, store))
	assert.Empty(t, pub.Events())
}

func TestAddStudent_PublishFailureDoesNotFail(t *testing.T) {
	store := testutil.SQLiteStore(t)
	pub := &testutil.RecordingPublisher{Err: errors.New("subscriber down")}
	h := command.NewAddStudentHandler(store, testutil.Clock(), pub, nil)

	_, err := h.Handle(context.Background(), command.AddStudentCommand{Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, countStudents(t, store))
}

func TestAddStudentCommand_Validate(t *testing.T) {
	assert.NoError(t, command.AddStudentCommand{Name: "Alice"}.Validate())
	assert.Error(t, command.AddStudentCommand{Name: "Alice9"}.Validate())
}
