package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies domain errors so handlers can pick a status code without
// string matching.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindTransient
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient_io"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is a domain error. Msg is safe to show to the client; Err keeps the
// underlying cause for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

// Unauthorized is a failed login or an unusable token.
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Transient wraps a database or network failure.
func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// StatusFor maps an error to its HTTP status and client-safe message.
func StatusFor(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal server error"
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest, e.Msg
	case KindNotFound:
		return http.StatusNotFound, e.Msg
	case KindConflict:
		return http.StatusConflict, e.Msg
	case KindTransient:
		return http.StatusServiceUnavailable, e.Msg
	case KindUnauthorized:
		return http.StatusUnauthorized, e.Msg
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
