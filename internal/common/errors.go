package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer wraps one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrDependency   = errors.New("dependency error")
	ErrUnauthorized = errors.New("unauthenticated")
)

// ErrInvalidTransition is a validation error raised when a booking status guard fails.
var ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)

// DomainError carries a caller-safe message alongside its kind.
type DomainError struct {
	Kind    error
	Message string
	Field   string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// ValidationError reports an invalid input field.
func ValidationError(field, message string) error {
	return &DomainError{Kind: ErrValidation, Field: field, Message: message}
}

// NotFoundError reports a missing resource. Resources owned by another tenant are reported the same way.
func NotFoundError(resource string) error {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// ConflictError reports a uniqueness violation or a booking overlap.
func ConflictError(field, message string) error {
	return &DomainError{Kind: ErrConflict, Field: field, Message: message}
}

// DependencyError reports a delete blocked by a referencing record.
func DependencyError(message string) error {
	return &DomainError{Kind: ErrDependency, Message: message}
}

// TransitionError reports a rejected booking status transition.
func TransitionError(message string) error {
	return &DomainError{Kind: ErrInvalidTransition, Message: message}
}

// IsKind reports whether err belongs to the given kind.
func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
