package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-readable category of a service error
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION_ERROR"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindConflict           ErrorKind = "CONFLICT"
	KindFeatureUnavailable ErrorKind = "FEATURE_UNAVAILABLE"
	KindPersistence        ErrorKind = "PERSISTENCE_FAILURE"
)

// Error is returned by every service operation. Message is safe to show to
// clients; Err carries the underlying cause for logs only.
type Error struct {
	Kind    ErrorKind
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

// Validation reports malformed or missing input
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced id that does not exist
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate key or a violated uniqueness rule
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// FeatureUnavailable reports an optional subsystem that is not provisioned
func FeatureUnavailable(format string, args ...interface{}) *Error {
	return &Error{Kind: KindFeatureUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a database or transport failure
func Persistence(err error, message string) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindPersistence for errors that did not
// originate in this package.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistence
}

// IsKind reports whether err is a service error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
