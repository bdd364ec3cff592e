// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
)

// Today is the fixed "now" used by Clock.
var Today = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

// Clock returns a fixed clock set to Today in UTC.
func Clock() *timeutil.FixedClock {
	return timeutil.NewFixedClock(Today)
}

// SQLiteStore opens a fresh database file under t.TempDir with the schema applied.
func SQLiteStore(t *testing.T) *sqlite.Connection {
	t.Helper()

	cfg := sqlite.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "attendance.db")

	conn, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.EnsureSchema(context.Background()))
	return conn
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
	Err    error
}

// Publish implements shared.EventPublisher.
func (p *RecordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.Event(nil), p.events...)
}

// Types returns the types of the published events in order.
func (p *RecordingPublisher) Types() []shared.EventType {
	events := p.Events()
	types := make([]shared.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType())
	}
	return types
}
