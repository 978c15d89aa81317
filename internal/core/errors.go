package core

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of platform failure categories. Every error
// returned by a ChatPlatform implementation carries exactly one kind, so the
// punishment and logging layers can match on it exhaustively instead of
// probing concrete error types.
type ErrorKind int

const (
	// ErrKindOther covers platform failures with no special handling.
	ErrKindOther ErrorKind = iota
	// ErrKindForbidden means the platform denied the action for lack of
	// permission.
	ErrKindForbidden
	// ErrKindNotFound means the target message or channel no longer exists.
	ErrKindNotFound
	// ErrKindTransient covers timeouts and connection failures.
	ErrKindTransient
)

// PlatformError wraps a chat-platform failure with its kind.
type PlatformError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: platform error (kind %d)", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError builds a PlatformError for the given operation.
func NewPlatformError(kind ErrorKind, op string, err error) *PlatformError {
	return &PlatformError{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the error kind from err. A nil error has no kind and any
// non-platform error maps to ErrKindOther.
func KindOf(err error) ErrorKind {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindOther
}

// ErrInvalidTimeoutDays is returned when a timeout period outside
// [MinTimeoutDays, MaxTimeoutDays] is submitted.
var ErrInvalidTimeoutDays = errors.New("timeout period must be between 1 and 28 days")

// ValidateTimeoutDays rejects out-of-range timeout periods at the boundary,
// before they reach storage.
func ValidateTimeoutDays(days int) error {
	if days < MinTimeoutDays || days > MaxTimeoutDays {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeoutDays, days)
	}
	return nil
}
