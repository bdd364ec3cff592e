package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
)

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"present":  StatusPresent,
		"PRESENT":  StatusPresent,
		" Absent ": StatusAbsent,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "late", "presentt", "excused"} {
		_, err := ParseStatus(bad)
		assert.True(t, errors.Is(err, shared.ErrInvalidStatus), bad)
	}
}

func TestParseBulkPolicy(t *testing.T) {
	p, err := ParseBulkPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyOverwrite, p)

	p, err = ParseBulkPolicy("Skip")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	_, err = ParseBulkPolicy("merge")
	assert.Error(t, err)
}

func TestResolveDate(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC))

	d, err := ResolveDate("", clock)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d)

	d, err = ResolveDate(" 2024-01-10 ", clock)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d)

	d, err = ResolveDate("2023-12-31", clock)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", d)
}

func TestResolveDate_Invalid(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC))

	for _, bad := range []string{"2024-01-11", "2030-01-01", "2024/01/09", "09-01-2024", "2024-13-01", "yesterday"} {
		_, err := ResolveDate(bad, clock)
		assert.True(t, errors.Is(err, shared.ErrInvalidDate), bad)
		assert.Equal(t, bad, shared.InputOf(err))
	}
}

func TestResolveDate_CauseTellsFormatFromFuture(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))

	_, err := ResolveDate("2024/01/09", clock)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
	assert.NotErrorIs(t, err, shared.ErrFutureTimestamp)

	_, err = ResolveDate("2024-01-11", clock)
	assert.ErrorIs(t, err, shared.ErrFutureTimestamp)
	assert.NotErrorIs(t, err, shared.ErrInvalidFormat)
	assert.True(t, shared.IsValidation(err))
}

func TestValidateStoredDate(t *testing.T) {
	assert.NoError(t, ValidateStoredDate("2099-01-01"))

	for _, bad := range []string{"", "2024-02-30", "10-01-2024", " 2024-01-10"} {
		err := ValidateStoredDate(bad)
		assert.ErrorIs(t, err, shared.ErrInvalidDate, bad)
		assert.ErrorIs(t, err, shared.ErrInvalidFormat, bad)
	}
}

func TestDuplicate(t *testing.T) {
	err := Duplicate(4, "2024-01-10")
	assert.True(t, errors.Is(err, shared.ErrDuplicateAttendance))
	assert.Contains(t, shared.InputOf(err), "2024-01-10")
}
