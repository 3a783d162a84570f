package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	// Details carries structured context such as an admission rejection.
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		if cause := e.Err.Error(); cause != e.Message {
			return fmt.Sprintf("%s: %s", e.Message, cause)
		}
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

// Is matches errors sharing the same code so Clone'd values still compare
// against the predefined sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors forming the engine taxonomy.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInvalidInput = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")
	ErrBusinessRule = New("BUSINESS_RULE_VIOLATION", http.StatusUnprocessableEntity, "business rule violation")
	ErrComputation  = New("COMPUTATION_ERROR", http.StatusInternalServerError, "computation failed")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
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
	return Wrap(err, ErrComputation.Code, ErrComputation.Status, ErrComputation.Message)
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

// Computation wraps an unexpected failure as a ComputationError.
func Computation(err error, message string) *Error {
	return Wrap(err, ErrComputation.Code, ErrComputation.Status, message)
}

// BusinessRule wraps a rule rejection as a BusinessRuleViolation whose
// message is the rejection's own reason.
func BusinessRule(err error, message string, details interface{}) *Error {
	e := Wrap(err, ErrBusinessRule.Code, ErrBusinessRule.Status, message)
	e.Details = details
	return e
}

// Invalid wraps a validation failure as InvalidInput.
func Invalid(err error, message string) *Error {
	return Wrap(err, ErrInvalidInput.Code, ErrInvalidInput.Status, message)
}

// IsCode reports whether err normalises to the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
