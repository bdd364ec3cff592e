package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/domain/student"
)

func registered() shared.Event {
	return student.NewStudentRegisteredEvent(&student.Student{ID: 1, Name: "Alice"}, time.Now())
}

func TestInMemoryEventBus_DeliversInOrder(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	var calls []string

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		calls = append(calls, "all")
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventStudentRegistered, func(e shared.Event) error {
		calls = append(calls, "typed:"+e.AggregateID())
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventAttendanceMarked, func(shared.Event) error {
		calls = append(calls, "wrong")
		return nil
	}))

	require.NoError(t, bus.Publish(registered()))
	assert.Equal(t, []string{"typed:1", "all"}, calls)
}

func TestInMemoryEventBus_HandlerErrorIsNotReturned(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ran := false
	require.NoError(t, bus.Subscribe(shared.EventStudentRegistered, func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		ran = true
		return nil
	}))

	assert.NoError(t, bus.Publish(registered()))
	assert.True(t, ran)
	assert.Equal(t, EventBusMetricsSnapshot{Published: 1, Succeeded: 1, Failed: 1}, bus.Metrics())
}

func TestInMemoryEventBus_Closed(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(registered()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.Error(t, bus.Subscribe(shared.EventStudentRegistered, nil))
}
