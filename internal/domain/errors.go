// Error kinds shared across repositories, services and handlers. Higher
// layers match on the kind to pick a response status while the message
// carries the human-readable reason.
package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindConflict       ErrorKind = "CONFLICT"
	KindBusinessRule   ErrorKind = "BUSINESS_RULE"
	KindInfrastructure ErrorKind = "INFRASTRUCTURE"
)

type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func BusinessRulef(format string, args ...interface{}) error {
	return &Error{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

// Infraf wraps a lower-level failure (transaction abort, storage outage)
// without losing the cause chain.
func Infraf(cause error, format string, args ...interface{}) error {
	return &Error{Kind: KindInfrastructure, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the error kind, defaulting to Infrastructure for errors
// that did not originate in this package.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInfrastructure
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
