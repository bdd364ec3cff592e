package student

import (
	"strconv"
	"strings"

	"github.com/classroll/attendance-tracker/internal/domain/shared"
	"github.com/classroll/attendance-tracker/pkg/validation"
)

// Student is a registered member of the roster.
type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NormalizeName trims name and checks it contains only letters and spaces.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := validation.Var(trimmed, validation.TagPersonName); err != nil {
		return "", shared.WithInput(shared.ErrInvalidName, name)
	}
	return trimmed, nil
}

// NotFound returns ErrStudentNotFound carrying id as the offending input.
func NotFound(id int64) error {
	return shared.WithInput(shared.ErrStudentNotFound, strconv.FormatInt(id, 10))
}

// Duplicate returns ErrDuplicateStudent carrying name as the offending input.
func Duplicate(name string) error {
	return shared.WithInput(shared.ErrDuplicateStudent, name)
}
