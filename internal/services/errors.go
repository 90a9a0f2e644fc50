package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMeetingNotFound is returned for unknown meeting ids
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrPoolExhausted is returned when every password is held by an active meeting
	ErrPoolExhausted = errors.New("password pool exhausted")

	// ErrWrongPassword is returned when a meeting password does not match
	ErrWrongPassword = errors.New("incorrect meeting password")

	// ErrTooManyAttempts is returned when password attempts for a meeting are rate limited
	ErrTooManyAttempts = errors.New("too many password attempts")

	// ErrInvalidCredentials is returned by the shared login
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoSession is returned when no login session is stored
	ErrNoSession = errors.New("no active session")
)

// ValidationError reports a rejected field of a meeting submission
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ParseError reports a persisted collection that could not be decoded
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
