// Package validation wraps go-playground/validator with the custom tags used by
// attendance commands.
package validation

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Custom tag names.
const (
	// TagPersonName accepts a non-blank string of letters and spaces.
	TagPersonName = "personname"
	// TagAttendanceStatus accepts "present" or "absent" in any letter case.
	TagAttendanceStatus = "attendance_status"
	// TagISODate accepts a strict YYYY-MM-DD calendar date.
	TagISODate = "isodate"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance with custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, TagPersonName, func(fl validator.FieldLevel) bool {
			return IsPersonName(fl.Field().String())
		})
		mustRegister(v, TagAttendanceStatus, func(fl validator.FieldLevel) bool {
			s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			return s == "present" || s == "absent"
		})
		// datetime=2006-01-02 already rejects impossible dates like 2024-02-30.
		mustRegister(v, TagISODate, func(fl validator.FieldLevel) bool {
			return v.Var(fl.Field().String(), "datetime=2006-01-02") == nil
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

// IsPersonName reports whether s, after trimming, is non-empty and made only of
// letters and spaces.
func IsPersonName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != ' ' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Struct validates s and returns the validator's error unchanged.
func Struct(s any) error {
	return Validator().Struct(s)
}

// Var validates a single value against tag.
func Var(value any, tag string) error {
	return Validator().Var(value, tag)
}

// FailedFields returns the struct field names that failed validation, in order.
// It returns nil when err is not a validator.ValidationErrors.
func FailedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.StructField())
	}
	return fields
}

// HasFailure reports whether field failed validation in err.
func HasFailure(err error, field string) bool {
	for _, f := range FailedFields(err) {
		if f == field {
			return true
		}
	}
	return false
}
