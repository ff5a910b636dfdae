package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and adapters.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet the minimum requirements")

	// ErrCreateNotSupported is returned by the event cache's Add operation.
	// Creation is issued directly against the event store and followed by a
	// full refetch; the cache does not own that path.
	ErrCreateNotSupported = errors.New("event creation goes through the event store followed by a refetch")
)

// AuthError wraps a failure reported by the auth provider. Message carries the
// provider's text so it can be surfaced to the user as a notification.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError returns an AuthError wrapping err with the given user-facing message.
func NewAuthError(message string, err error) *AuthError {
	return &AuthError{Message: message, Err: err}
}

// StoreError wraps a failure from a data-store operation. Op names the
// operation that failed (e.g. "list events").
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError returns a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// FieldError is a single form-validation failure, rendered next to the field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates form-schema violations. It blocks submission;
// nothing reaches the store while it is non-empty.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
