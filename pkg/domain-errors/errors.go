// Package domainerrors provides coded errors for the registration domain.
// Services return these; the transport layer maps codes to HTTP statuses.
// Import with the dErrors alias.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure. The set is closed: every failure a caller
// can recover from maps to exactly one code.
type Code string

const (
	// CodeInvalidInput marks a field-level format failure. Errors with this
	// code should carry the offending field name.
	CodeInvalidInput Code = "invalid_input"

	// CodeDuplicate marks an identity-number or tax-ID collision with an
	// existing record.
	CodeDuplicate Code = "duplicate"

	// CodeNotFound marks an unknown registration id.
	CodeNotFound Code = "not_found"

	// CodePrecondition marks a step attempted out of order.
	CodePrecondition Code = "precondition_failed"

	// CodeOTPInvalid marks a wrong, reused, or expired one-time code.
	CodeOTPInvalid Code = "otp_invalid"

	// CodeBadRequest marks a malformed request outside field validation.
	CodeBadRequest Code = "bad_request"

	// CodeInternal marks an unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Field is set for input validation failures so
// callers can surface which field to correct.
type Error struct {
	Code    Code
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewField builds a field-level validation error.
func NewField(code Code, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldOf extracts the field name from err, if any.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
