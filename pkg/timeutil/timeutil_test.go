package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayString_UsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 21:30 UTC on Jan 9 is already Jan 10 at UTC+5.
	clock := NewFixedClock(time.Date(2024, 1, 9, 21, 30, 0, 0, time.UTC).In(loc))

	assert.Equal(t, "2024-01-10", TodayString(clock))
}

func TestParseDate_Strict(t *testing.T) {
	d, err := ParseDate("2024-01-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.January, 10, time.UTC), d)

	for _, bad := range []string{"2024-1-10", "10/01/2024", "2024-02-30", "", "2024-01-10T00:00:00Z"} {
		_, err := ParseDate(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}

func TestIsAfterDay(t *testing.T) {
	base := Date(2024, time.March, 15, time.UTC)

	assert.False(t, IsAfterDay(base, base))
	assert.False(t, IsAfterDay(base.Add(23*time.Hour), base))
	assert.True(t, IsAfterDay(base.AddDate(0, 0, 1), base))
	assert.True(t, IsAfterDay(Date(2025, time.January, 1, time.UTC), base))
	assert.False(t, IsAfterDay(Date(2023, time.December, 31, time.UTC), base))
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock(Date(2024, time.January, 10, time.UTC))
	clock.Advance(24 * time.Hour)

	assert.Equal(t, "2024-01-11", TodayString(clock))
}

func TestLoadLocation_Fallback(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation(""))
	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
}
