// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// includes utilities for converting to and from gRPC status errors.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeBadRequest          ErrorCode = "BAD_REQUEST"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeNoAvailableCouriers ErrorCode = "NO_AVAILABLE_COURIERS"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is the application's error type: a code, a message, optional field
// and details, an optional cause, and a severity level.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/As to reach the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError pull a gRPC status directly off an *Error.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeBadRequest:
		return codes.InvalidArgument
	case CodeNotFound:
		return codes.NotFound
	case CodeConflict:
		return codes.AlreadyExists
	case CodeNoAvailableCouriers:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// New creates a new application error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField creates a new application error tied to a request field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// Wrap wraps an existing error with an application error code and message.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

// WithDetails attaches a key/value detail and returns the same error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts any error into a gRPC status error.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, err.Error())
}

// FromGRPC converts a gRPC error back into an *Error.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return New(CodeInternal, err.Error())
	}

	var code ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeBadRequest
	case codes.NotFound:
		code = CodeNotFound
	case codes.AlreadyExists:
		code = CodeConflict
	case codes.Unavailable:
		code = CodeNoAvailableCouriers
	default:
		code = CodeInternal
	}

	return New(code, st.Message())
}

// ValidationErrors aggregates the results of multiple validation checks.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors returns an empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0), Warnings: make([]*Error, 0)}
}

// AddError appends a new error with SeverityError.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddErrorWithField appends a new error tied to a specific request field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors reports whether any error (not just warnings) was collected.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ErrorMessages returns the string form of every collected error.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}
