// Package apierr defines the gateway's error taxonomy. Every failure that
// reaches a caller is one of a small set of kinds with a stable machine code
// and HTTP status; the reason string is for logs only.
package apierr

import (
	"errors"
	"net/http"
)

// Kind is a category of caller-visible failure.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindNotFound
	KindBadRequest
	KindUnavailable
)

// Code returns the stable machine-readable code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnavailable:
		return "UNAVAILABLE"
	}
	return "INTERNAL_ERROR"
}

// Status returns the HTTP status used when the error is written at the
// transport level.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	// Reason is the internal cause. It is never written to a response.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Message + ": " + e.Reason
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithReason returns a copy of e carrying an internal reason.
func (e *Error) WithReason(reason string) *Error {
	cp := *e
	cp.Reason = reason
	return &cp
}

// Wrap returns a copy of e wrapping a cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	if err != nil && cp.Reason == "" {
		cp.Reason = err.Error()
	}
	return &cp
}

// KindOf returns the kind of err, or KindInternal if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Public returns the message safe to show to the caller.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
