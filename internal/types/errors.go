package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindConfiguration      ErrorKind = "configuration_error"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindResolution         ErrorKind = "resolution_error"
	KindVerificationFailed ErrorKind = "verification_failed"
	KindProvision          ErrorKind = "provision_error"
	KindConflict           ErrorKind = "conflict"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
)

// Error is the error type crossing service boundaries. Message is safe to show to API clients,
// Err is kept for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func ErrNotFound(message string) *Error {
	return NewError(KindNotFound, message, nil)
}

func ErrConfiguration(message string) *Error {
	return NewError(KindConfiguration, message, nil)
}

func ErrInvalidInput(message string, err error) *Error {
	return NewError(KindInvalidInput, message, err)
}

func ErrConflict(message string) *Error {
	return NewError(KindConflict, message, nil)
}

func ErrUnauthorized(message string) *Error {
	return NewError(KindUnauthorized, message, nil)
}

func ErrForbidden(message string) *Error {
	return NewError(KindForbidden, message, nil)
}

func ErrInternal(err error) *Error {
	return NewError(KindInternal, "internal server error", err)
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
