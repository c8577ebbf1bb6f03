// Package domainerrors provides coded errors for the service layer.
//
// Stores return plain sentinel errors (see pkg/platform/sentinel); services
// translate them into coded errors so transports can map codes to status
// codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. The set is closed: NotFound and
// Unauthorized exist as declared outcomes of the registry contract even
// though the default logic never produces them, BadRequest and Internal
// cover transport validation and infrastructure faults.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal"
)

// Error carries a code alongside a human-readable message and an optional
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.cause
		coded = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// Message returns the outermost coded message, or the raw error text for
// uncoded errors.
func Message(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return err.Error()
}
