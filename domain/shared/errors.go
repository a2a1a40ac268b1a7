/*
Package shared holds the error taxonomy, event and unit-of-work contracts
shared by every fulfillment bounded context.

Errors follow two layers:
  - taxonomy sentinels (ErrNotFound, ErrConflict, ...) that the API layer maps
    to transport status codes
  - context sentinels built with NewKind (order.ErrEmptyCart, ...) that unwrap
    to a taxonomy sentinel, so errors.Is works against either layer

DomainError captures the call stack at construction and formats it lazily.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrUpstreamUnavailable covers a payment or logistics provider that is
	// unreachable, timed out or answered with an error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvariantViolation signals an internal bug. Never retried.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrInvalidState is a conflict caused by the current lifecycle state of an entity.
	ErrInvalidState = NewKind(ErrConflict, "invalid state")

	// ErrConcurrentModification is returned when an optimistic version check fails.
	ErrConcurrentModification = NewKind(ErrConflict, "concurrent modification")
)

// Kind is a named sentinel that belongs to a parent taxonomy sentinel.
type Kind struct {
	parent error
	msg    string
}

// NewKind declares a context-specific sentinel under parent.
func NewKind(parent error, msg string) error {
	return &Kind{parent: parent, msg: msg}
}

func (k *Kind) Error() string { return k.msg }
func (k *Kind) Unwrap() error { return k.parent }

// DomainError carries entity context and the stack of the point where it was raised.
type DomainError struct {
	// Err is the sentinel used by errors.Is.
	Err     error
	Entity  string
	Message string
	Field   string
	// Cause is an optional lower-level error (transport failure, driver error).
	Cause error

	stack []uintptr
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Stack formats the captured stack on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack captures the current call stack.
// skip: frames to skip (usually 3: Callers, CaptureStack, the constructor)
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders at most ten non-runtime frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// NewError builds a DomainError for any sentinel. Context packages use it
// through their own constructors.
func NewError(sentinel error, entity, message string) *DomainError {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// WithCause attaches the lower-level error and returns e.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewInvalidStateError(entity, message string) error {
	return &DomainError{
		Err:     ErrInvalidState,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

func NewConcurrentModificationError(entity, id string) error {
	return &DomainError{
		Err:     ErrConcurrentModification,
		Entity:  entity,
		Message: entity + " " + id + " was modified by another transaction, please retry",
		stack:   CaptureStack(3),
	}
}

func NewInvariantViolationError(entity, message string) error {
	return &DomainError{
		Err:     ErrInvariantViolation,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can report where they were raised.
type Stacker interface {
	Stack() []string
}
