// Package apperror defines the error kinds the item service reports and the
// HTTP status each one maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for the HTTP boundary
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnsupportedMediaType
	KindMethodNotAllowed
)

var statusByKind = map[Kind]int{
	KindInternal:             http.StatusInternalServerError,
	KindValidation:           http.StatusBadRequest,
	KindNotFound:             http.StatusNotFound,
	KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
	KindMethodNotAllowed:     http.StatusMethodNotAllowed,
}

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnsupportedMediaType:
		return "unsupported_media_type"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "internal"
	}
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	// Fields names the offending input fields of a validation error
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil && len(t.Fields) == 0
}

// Sentinels for errors.Is checks
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrUnsupportedMediaType = &Error{Kind: KindUnsupportedMediaType}
	ErrMethodNotAllowed     = &Error{Kind: KindMethodNotAllowed}
	ErrInternal             = &Error{Kind: KindInternal}
)

// Validation returns a validation error naming the offending fields
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound returns a not-found error with a formatted message
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedMediaType returns a 415 error with a formatted message
func UnsupportedMediaType(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnsupportedMediaType, Message: fmt.Sprintf(format, args...)}
}

// MethodNotAllowed returns a 405 error with a formatted message
func MethodNotAllowed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
