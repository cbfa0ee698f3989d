// Package apperr is the error taxonomy shared by the builder, delivery and
// order packages. Services translate adapter and transport failures into one
// of these kinds at their boundary so handlers never see raw driver errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by who can fix it.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindUnavailable  Kind = "unavailable"
	KindUpstream     Kind = "upstream"
	KindInternal     Kind = "internal"
)

// Error is a user-facing message tagged with a Kind. Cause is kept for logs
// and errors.Is/As, it is never rendered to the caller.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func InvalidInput(msg string) error { return &Error{Kind: KindInvalidInput, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Unavailable(msg string) error { return &Error{Kind: KindUnavailable, Message: msg} }

// Upstream reports a failing third-party dependency such as the geocoder.
func Upstream(msg string, cause error) error {
	return &Error{Kind: KindUpstream, Message: msg, Cause: cause}
}

// Internal wraps a storage or transport failure behind a generic message.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// OutOfRadiusError is the InvalidInput subtype returned when a delivery point
// lies beyond the configured radius and no manual approval was requested.
type OutOfRadiusError struct {
	DistanceMiles float64
	AllowedMiles  float64
}

func (e *OutOfRadiusError) Error() string {
	return fmt.Sprintf("out_of_radius: %.1f miles exceeds %.1f miles", e.DistanceMiles, e.AllowedMiles)
}

// KindOf reports the Kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var oor *OutOfRadiusError
	if errors.As(err, &oor) {
		return KindInvalidInput
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-safe message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var oor *OutOfRadiusError
	if errors.As(err, &oor) {
		return oor.Error()
	}
	return "internal error"
}
