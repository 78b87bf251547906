// Package apperror maps application failures onto HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is anything unexpected.
	KindInternal Kind = iota
	// KindValidation covers rejected input: duplicate username, empty message, malformed JSON.
	KindValidation
	// KindNotFound covers unknown links, ids and resource types.
	KindNotFound
	// KindAuth is a failed authentication attempt.
	KindAuth
	// KindForbidden is a missing or insufficient session.
	KindForbidden
	// KindStorage is a failed write to the backing store.
	KindStorage
	// KindTooManyRequests is a rate limit rejection.
	KindTooManyRequests
)

// Error carries a kind, a user-facing message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, err error) *Error { return New(KindValidation, message, err) }
func NotFound(message string, err error) *Error   { return New(KindNotFound, message, err) }
func Auth(message string, err error) *Error       { return New(KindAuth, message, err) }
func Forbidden(message string, err error) *Error  { return New(KindForbidden, message, err) }
func Storage(message string, err error) *Error    { return New(KindStorage, message, err) }
func Internal(message string, err error) *Error   { return New(KindInternal, message, err) }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal when err carries none.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode reports the HTTP status for any error.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
