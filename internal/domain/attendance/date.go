package attendance

import (
	"fmt"
	"strings"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/timeutil"
	"github.com/classroll/attendance-tracker/pkg/validation"
)

// ResolveDate turns operator input into a stored YYYY-MM-DD date.
// Empty input means today on clock. Anything else must parse strictly and must
// not be after today; otherwise ErrInvalidDate is returned, caused by
// shared.ErrInvalidFormat or shared.ErrFutureTimestamp.
func ResolveDate(input string, clock timeutil.Clock) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return timeutil.TodayString(clock), nil
	}

	day, err := timeutil.ParseDate(trimmed, clock.Location())
	if err != nil {
		return "", shared.WithCause(shared.ErrInvalidDate, input, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err))
	}
	if timeutil.IsAfterDay(day, timeutil.Today(clock)) {
		return "", shared.WithCause(shared.ErrInvalidDate, input, shared.ErrFutureTimestamp)
	}
	return timeutil.FormatDateStr(day), nil
}

// ValidateStoredDate checks the format of a date read from an external source
// without the "not in the future" rule.
func ValidateStoredDate(value string) error {
	if err := validation.Var(value, validation.TagISODate); err != nil {
		return shared.WithCause(shared.ErrInvalidDate, value, shared.ErrInvalidFormat)
	}
	return nil
}
