// Package errors defines the broker's failure taxonomy.
// Every failure crossing a component boundary carries a stable Kind tag
// so the gateway can report it to clients without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrWorkerPanic tags a recovered panic inside a supervised worker.
var ErrWorkerPanic = errors.New("worker panic")

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInvalidState      Kind = "INVALID_STATE"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindCapacityExceeded  Kind = "CAPACITY_EXCEEDED"
	KindTimeout           Kind = "TIMEOUT"
	KindStoreFailure      Kind = "STORE_FAILURE"
	KindInternal          Kind = "INTERNAL"
)

// Error is the structured failure surfaced to callers.
// Detail is safe to forward verbatim to clients.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Detail: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Detail: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func CapacityExceeded(format string, args ...any) *Error {
	return &Error{Kind: KindCapacityExceeded, Detail: fmt.Sprintf(format, args...)}
}

func Timeout(format string, args ...any) *Error {
	return &Error{Kind: KindTimeout, Detail: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps an opaque persistence error.
func StoreFailure(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindStoreFailure, Detail: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the Kind from any error in the chain.
// Unknown errors are reported as KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DetailOf returns the client-facing detail for an error chain.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal error"
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
