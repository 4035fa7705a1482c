package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a ZQ error.
type ErrorCode string

// Error codes, grouped by failure class.
//
// S-codes and U-codes are structural: the query cannot be compiled, so they
// are fatal before any input is read. T-codes and F-codes are evaluation
// failures scoped to a single record. R-codes are runtime/IO failures.
const (
	// S0xxx: Parser/Syntax errors
	ErrStringNotClosed ErrorCode = "S0101"
	ErrInvalidNumber   ErrorCode = "S0102"
	ErrInvalidEscape   ErrorCode = "S0103"
	ErrUnexpectedEnd   ErrorCode = "S0104"
	ErrSyntax          ErrorCode = "S0201"
	ErrExpectedToken   ErrorCode = "S0202"
	ErrDepthExceeded   ErrorCode = "S0203"

	// U0xxx: Unsupported language features
	ErrUnsupportedFeature ErrorCode = "U0101"

	// T0xxx: Evaluation type errors
	ErrType           ErrorCode = "T0101"
	ErrArgumentCount  ErrorCode = "T0102"
	ErrArgumentType   ErrorCode = "T0103"
	ErrDivisionByZero ErrorCode = "T0104"

	// F0xxx: Function resolution errors
	ErrUnknownFunction ErrorCode = "F0101"

	// R0xxx: Runtime/IO errors
	ErrInvalidInput   ErrorCode = "R0101"
	ErrBrokenPipe     ErrorCode = "R0102"
	ErrRecordFailures ErrorCode = "R0103"
)

// Error represents a structured ZQ error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int    // byte offset into the query or -1
	Token    string // offending token or construct name, if known
	Hint     string // suggested supported alternative (feature detector)
	Err      error
}

// NewError creates a new ZQ error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Position >= 0 {
		msg = fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithHint adds a suggested-alternative hint to the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// CodeOf returns the error code of err, or "" if err is not a *Error.
func CodeOf(err error) ErrorCode {
	var ze *Error
	if errors.As(err, &ze) {
		return ze.Code
	}
	return ""
}

// IsEvalError reports whether err is a per-record evaluation failure
// (type error or unknown function) rather than a structural one. Per-record
// failures skip the record and keep the stream going; structural failures
// are fatal at startup.
func IsEvalError(err error) bool {
	switch CodeOf(err) {
	case ErrType, ErrArgumentCount, ErrArgumentType, ErrDivisionByZero, ErrUnknownFunction:
		return true
	}
	return false
}
