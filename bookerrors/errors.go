// Package bookerrors provides the structured error type wrapping the
// order book core's sentinel errors (internal/book) with severity
// classification, call-site capture, and detail attachment for callers
// at the pkg/orderbook façade and above.
//
// Grounded on the teacher's pkg/errors (TradSysError), narrowed to the
// error codes a single-symbol matching engine can actually raise.
package bookerrors

import (
	"fmt"
	"runtime"
	"time"
)

// ErrorCode classifies a BookError by the core invariant or boundary
// condition it came from.
type ErrorCode string

const (
	ErrPreconditionViolation ErrorCode = "PRECONDITION_VIOLATION"
	ErrNotFound              ErrorCode = "NOT_FOUND"
	ErrDuplicateID           ErrorCode = "DUPLICATE_ID"
	ErrAllocationExhausted   ErrorCode = "ALLOCATION_EXHAUSTED"
	ErrBookInconsistency     ErrorCode = "BOOK_INCONSISTENCY"
	ErrRateLimited           ErrorCode = "RATE_LIMITED"
	ErrSymbolNotFound        ErrorCode = "SYMBOL_NOT_FOUND"
)

// Severity is the operational severity of a BookError.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// BookError is the structured error type returned by pkg/orderbook.
type BookError struct {
	Code      ErrorCode
	Message   string
	Severity  Severity
	Timestamp time.Time
	File      string
	Line      int
	Function  string
	Cause     error
	Symbol    string
}

func (e *BookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message)
}

func (e *BookError) Unwrap() error {
	return e.Cause
}

// WithSymbol attaches the book symbol the error occurred on.
func (e *BookError) WithSymbol(symbol string) *BookError {
	e.Symbol = symbol
	return e
}

// New creates a BookError with the default severity for code.
func New(code ErrorCode, message string) *BookError {
	pc, file, line, _ := runtime.Caller(1)
	return &BookError{
		Code:      code,
		Message:   message,
		Severity:  severityFor(code),
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Function:  funcName(pc),
	}
}

// Wrap wraps err (typically one of internal/book's sentinel errors)
// into a classified BookError. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *BookError {
	if err == nil {
		return nil
	}
	pc, file, line, _ := runtime.Caller(1)
	return &BookError{
		Code:      code,
		Message:   message,
		Severity:  severityFor(code),
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Function:  funcName(pc),
		Cause:     err,
	}
}

func funcName(pc uintptr) string {
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return ""
}

// Is reports whether err is a BookError with the given code.
func Is(err error, code ErrorCode) bool {
	var be *BookError
	if As(err, &be) {
		return be.Code == code
	}
	return false
}

// As finds the first *BookError in err's chain and assigns it to target.
func As(err error, target **BookError) bool {
	if err == nil {
		return false
	}
	if be, ok := err.(*BookError); ok {
		*target = be
		return true
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return As(unwrapper.Unwrap(), target)
	}
	return false
}

// Code extracts the ErrorCode from err, or "" if it is not a BookError.
func Code(err error) ErrorCode {
	var be *BookError
	if As(err, &be) {
		return be.Code
	}
	return ""
}

// IsCritical reports whether err is a BookError of critical severity —
// in this domain, exactly ErrBookInconsistency, since every other code
// is an expected, recoverable rejection of one submission.
func IsCritical(err error) bool {
	var be *BookError
	if As(err, &be) {
		return be.Severity == SeverityCritical
	}
	return false
}

func severityFor(code ErrorCode) Severity {
	switch code {
	case ErrBookInconsistency:
		return SeverityCritical
	case ErrAllocationExhausted, ErrRateLimited:
		return SeverityHigh
	case ErrNotFound, ErrDuplicateID, ErrSymbolNotFound:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
