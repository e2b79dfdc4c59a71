// Package apierror provides the error taxonomy shared by all services and the
// standardized response envelopes returned to API clients. All errors returned
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, file paths, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business or infrastructure failure.
type Kind int

const (
	KindConflict     Kind = iota // close with open children, double-close, mutate closed ticket
	KindNotFound                 // unknown session/station/ticket/line id
	KindValidation               // bad weight, bad destination, malformed token string
	KindUnauthorized             // signature mismatch, expired token, filename mismatch
	KindUploadFailed             // remote sync retries exhausted
	KindIO                       // filesystem failure during artifact write/retention
)

// Error is the canonical typed error carried across service boundaries.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func UploadFailed(msg string, cause error) *Error {
	return &Error{Kind: KindUploadFailed, Msg: msg, Err: cause}
}

func IO(msg string, cause error) *Error {
	return &Error{Kind: KindIO, Msg: msg, Err: cause}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}
