package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTimerNotFound    = NewError(ErrCodeNotFound, "timer not found")
	ErrTemplateNotFound = NewError(ErrCodeNotFound, "template not found")
	ErrVersionConflict  = NewError(ErrCodeConflict, "timer was modified concurrently")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidDuration  = NewError(ErrCodeInvalid, "duration must be positive")
	ErrInvalidRemaining = NewError(ErrCodeInvalid, "remaining_seconds out of range")
)

// TransitionError reports an event the state machine refused. Current holds the
// record as it was before the attempt so callers can treat the refusal as a no-op.
type TransitionError struct {
	From    Status
	Event   Event
	Current *Timer
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid transition: %s from %s", e.Event, e.From)
}

// Is lets errors.Is and IsDomainError treat transition refusals as INVALID_TRANSITION.
func (e *TransitionError) Is(target error) bool {
	var dErr *Error
	if errors.As(target, &dErr) {
		return dErr.Code == ErrCodeInvalidTransition
	}
	return false
}

// ErrInvalidTransition is the sentinel matched by any *TransitionError.
var ErrInvalidTransition = NewError(ErrCodeInvalidTransition, "invalid transition")

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var tErr *TransitionError
	if errors.As(err, &tErr) {
		return code == ErrCodeInvalidTransition
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsTransitionError extracts a *TransitionError from err.
func AsTransitionError(err error) (*TransitionError, bool) {
	var tErr *TransitionError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
