// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return coded errors; the HTTP layer maps codes to statuses
// in exactly one place.
package apperr

import "errors"

type Code string

const (
	CodeInvalid      Code = "invalid"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
	CodeBadGateway   Code = "bad_gateway"
)

// FieldError points at a single offending request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Code    Code
	Message string
	Fields  []FieldError // populated for CodeInvalid only
	Err     error        // wrapped cause, never serialized
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string, fields ...FieldError) error {
	return &Error{Code: CodeInvalid, Message: msg, Fields: fields}
}

func NotFound(msg string) error     { return &Error{Code: CodeNotFound, Message: msg} }
func Unauthorized(msg string) error { return &Error{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Code: CodeForbidden, Message: msg} }
func Conflict(msg string) error     { return &Error{Code: CodeConflict, Message: msg} }
func BadGateway(msg string) error   { return &Error{Code: CodeBadGateway, Message: msg} }

// Internal wraps a cause whose detail must stay server-side.
func Internal(msg string, cause error) error {
	return &Error{Code: CodeInternal, Message: msg, Err: cause}
}

// CodeOf extracts the taxonomy code, defaulting to CodeInternal for
// untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
