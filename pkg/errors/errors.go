package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carrying the HTTP status it maps to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the review workflow taxonomy.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthenticated    = New("UNAUTHENTICATED", http.StatusUnauthorized, "authentication required")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusUnauthorized, "account is inactive")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrUpstream           = New("UPSTREAM_FAILURE", http.StatusInternalServerError, "upstream collaborator failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
