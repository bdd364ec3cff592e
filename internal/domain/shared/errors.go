// Package shared contains common domain types, errors and events used across
// the roster and attendance domains. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error categories for errors.Is() checks.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrValidation         = errors.New("validation error")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrFutureTimestamp    = errors.New("date is after today")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "roster", "attendance", "storage"
	Op      string // operation that failed, e.g. "AddStudent"
	Kind    error  // sentinel used for errors.Is() checking
	Message string // human-readable message
	Input   string // offending input, if any
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
	if e.Input != "" {
		msg += fmt.Sprintf(" (input %q)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against the kind chain and the cause.
func (e *DomainError) Is(target error) bool {
	if e == target {
		return true
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithInput returns a copy of a sentinel error carrying the offending input.
// The copy still matches the sentinel with errors.Is.
func WithInput(kind *DomainError, input string) *DomainError {
	return &DomainError{
		Domain:  kind.Domain,
		Op:      kind.Op,
		Kind:    kind,
		Message: kind.Message,
		Input:   input,
	}
}

// WithCause is WithInput plus an underlying error.
func WithCause(kind *DomainError, input string, err error) *DomainError {
	e := WithInput(kind, input)
	e.Err = err
	return e
}

// Error taxonomy of the roster and the attendance ledger.
var (
	ErrInvalidName         = NewDomainError("roster", "AddStudent", ErrValidation, "invalid name: use letters and spaces only")
	ErrDuplicateStudent    = NewDomainError("roster", "AddStudent", ErrAlreadyExists, "student already exists")
	ErrStudentNotFound     = NewDomainError("roster", "GetStudent", ErrNotFound, "student not found")
	ErrInvalidDate         = NewDomainError("attendance", "ResolveDate", ErrValidation, "invalid date: use YYYY-MM-DD, not in the future")
	ErrInvalidStatus       = NewDomainError("attendance", "ParseStatus", ErrValidation, "invalid status: use present or absent")
	ErrDuplicateAttendance = NewDomainError("attendance", "Mark", ErrAlreadyExists, "attendance already recorded for this date")
	ErrStorageUnavailable  = NewDomainError("storage", "Access", ErrServiceUnavailable, "storage unavailable")
)

// StorageError wraps err as ErrStorageUnavailable unless it is already a domain error.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Domain:  ErrStorageUnavailable.Domain,
		Op:      op,
		Kind:    ErrStorageUnavailable,
		Message: ErrStorageUnavailable.Message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStorage checks if the error is a storage failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// InputOf returns the offending input recorded on a domain error, if any.
func InputOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Input
	}
	return ""
}
