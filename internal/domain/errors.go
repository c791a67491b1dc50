// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates malformed or illegal input. Never retried.
var ErrValidation = errors.New("validation failed")

// ErrNotAllowed indicates a well-formed operation rejected by configuration
// or lifecycle policy (standalone tasks disabled, task bound to a running
// instance, suspended task).
var ErrNotAllowed = errors.New("operation not allowed")

// ErrSecurity indicates expression use rejected by a disabled toggle.
var ErrSecurity = errors.New("expression evaluation not permitted")

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotAllowedf wraps ErrNotAllowed with a formatted message.
func NotAllowedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotAllowed, fmt.Sprintf(format, args...))
}

// Securityf wraps ErrSecurity with a formatted message.
func Securityf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSecurity, fmt.Sprintf(format, args...))
}
