package student

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
)

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Alice Smith ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", name)

	for _, bad := range []string{"", "   ", "Alice2", "Bob!", "Jo_Ann", "Ann,Lee"} {
		_, err := NormalizeName(bad)
		assert.True(t, errors.Is(err, shared.ErrInvalidName), bad)
		assert.Equal(t, bad, shared.InputOf(err))
	}
}

func TestNotFoundAndDuplicate(t *testing.T) {
	err := NotFound(99)
	assert.True(t, errors.Is(err, shared.ErrStudentNotFound))
	assert.Equal(t, "99", shared.InputOf(err))

	err = Duplicate("Alice Smith")
	assert.True(t, errors.Is(err, shared.ErrDuplicateStudent))
	assert.Equal(t, "Alice Smith", shared.InputOf(err))
}

func TestStudentRegisteredEvent(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	ev := NewStudentRegisteredEvent(&Student{ID: 3, Name: "Bob Jones"}, at)

	assert.Equal(t, shared.EventStudentRegistered, ev.EventType())
	assert.Equal(t, "3", ev.AggregateID())
	assert.Equal(t, at, ev.OccurredAt())
	assert.Equal(t, "Bob Jones", ev.Payload()["name"])
}
