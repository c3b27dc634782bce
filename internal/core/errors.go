// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors.
//
// ErrDataUnavailable, ErrNoCandidate and ErrOutOfPriceRange are recovered
// locally inside the screener; they reduce the row count and never abort a
// batch. The *_INVALID kinds are eager precondition violations.
var (
	// Gateway errors
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "market data unavailable"}
	ErrGatewayTimeout  = &Error{Code: "GATEWAY_TIMEOUT", Message: "gateway timeout"}

	// Screening outcomes
	ErrNoCandidate     = &Error{Code: "NO_CANDIDATE", Message: "no eligible option contract"}
	ErrOutOfPriceRange = &Error{Code: "OUT_OF_PRICE_RANGE", Message: "price outside requested bounds"}

	// Validation errors
	ErrConfigInvalid  = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrRequestInvalid = &Error{Code: "REQUEST_INVALID", Message: "scan request invalid"}

	// Lookup errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Advisor errors
	ErrAdvisorFailed = &Error{Code: "ADVISOR_FAILED", Message: "advisor request failed"}
)
