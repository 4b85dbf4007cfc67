// Package apperrors provides structured error types for the API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code represents a unique error code.
type Code string

const (
	CodeValidation   Code = "VALIDATION_FAILED"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBadRequest
	CategoryUnauthorized
	CategoryForbidden
	CategoryNotFound
	CategoryConflict
	CategoryInternal
)

var codeCategories = map[Code]Category{
	CodeValidation:   CategoryBadRequest,
	CodeBadRequest:   CategoryBadRequest,
	CodeUnauthorized: CategoryUnauthorized,
	CodeForbidden:    CategoryForbidden,
	CodeNotFound:     CategoryNotFound,
	CodeConflict:     CategoryConflict,
	CodeInternal:     CategoryInternal,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryBadRequest:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error type returned by services.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(" ")
		b.WriteString(f.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category for HTTP status mapping.
func (e *Error) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error that keeps cause in the chain.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func BadRequest(format string, args ...any) *Error {
	return New(CodeBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

// Forbidden returns the generic access-denied error.
func Forbidden() *Error {
	return New(CodeForbidden, "Access denied")
}

func NotFound(what string) *Error {
	return New(CodeNotFound, what+" not found")
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

// Validation returns a validation error carrying the offending fields.
func Validation(fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "Validation failed", Fields: fields}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for any error. Errors without a code are 500.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
