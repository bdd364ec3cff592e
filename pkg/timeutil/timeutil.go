// Package timeutil provides calendar-date helpers and an injectable clock.
// Attendance is recorded per calendar day in the operator's timezone, so every
// "today" in the application goes through a Clock rather than time.Now.
// No external dependencies - uses only standard library.
package timeutil

import (
	"sync"
	"time"
)

// FormatDate is the ISO calendar date layout (YYYY-MM-DD) used for storage and display.
const FormatDate = "2006-01-02"

// Clock is the time source used for defaults and "not in the future" checks.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Location returns the timezone in which calendar dates are evaluated.
	Location() *time.Location
}

// SystemClock reads the system time and evaluates dates in a fixed timezone.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a clock for the given timezone (UTC when nil).
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

// Now returns the current time in the clock's timezone.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the clock's timezone.
func (c *SystemClock) Location() *time.Location {
	return c.loc
}

// FixedClock always reports the same instant until moved. Intended for tests.
type FixedClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Location returns the timezone of the frozen instant.
func (c *FixedClock) Location() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now.Location()
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Date creates midnight of the given calendar day in loc.
func Date(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// StartOfDay returns 00:00:00 of t's calendar day in t's timezone.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns midnight of the clock's current calendar day.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now().In(c.Location()))
}

// TodayString returns the clock's current calendar day as YYYY-MM-DD.
func TodayString(c Clock) string {
	return Today(c).Format(FormatDate)
}

// ParseDate parses a strict YYYY-MM-DD string as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(FormatDate, value, loc)
}

// FormatDateStr formats t as YYYY-MM-DD.
func FormatDateStr(t time.Time) string {
	return t.Format(FormatDate)
}

// IsAfterDay reports whether a's calendar day is strictly after b's.
// Both values are compared in their own timezones by calendar fields only.
func IsAfterDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

// LoadLocation resolves an IANA timezone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
