package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, Format: FormatJSON}).
		WithRequestID("req-1")

	log.Info("attendance marked", StudentID(7), Date("2024-01-10"), Status("present"))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "attendance marked", entry.Message)
	assert.Equal(t, "req-1", entry.Fields[RequestIDKey])
	assert.Equal(t, float64(7), entry.Fields["student_id"])
	assert.Equal(t, "2024-01-10", entry.Fields["date"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "boom")
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelDebug, Format: FormatText})

	log.Debug("bulk mark", Count("marked", 3), Count("skipped", 1))

	line := buf.String()
	assert.Contains(t, line, "DEBUG bulk mark")
	assert.Contains(t, line, "marked=3 skipped=1")
}

func TestLogger_WithDoesNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf, Level: LevelInfo})
	_ = base.With(Component("roster"))

	base.Info("plain")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Empty(t, entry.Fields)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestLogger_AddCaller(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, AddCaller: true})

	log.Info("here")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.True(t, strings.HasPrefix(entry.Caller, "logger_test.go:"), entry.Caller)
}
