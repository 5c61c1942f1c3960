// Package errors provides structured error handling for MoGUL resource pools.
//
// Every failure a pool can report carries an ErrorType so callers can branch on
// the category (exhausted pool, bad argument, failed loader, foreign pointer)
// without string matching. Errors capture the call stack at creation and can
// carry key/value details such as the pool name and the resource key.
//
//	p, err := sprites.LoadByKey(ctx, "images/hero.png")
//	if errors.IsType(err, errors.ErrorTypePoolExhausted) {
//	    sprites.Clean()
//	}
//
// The sentinels (ErrPoolExhausted, ErrLoadFailed, ...) match any error of the
// same type through the standard library's errors.Is.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypePoolExhausted means every slot is live and nothing can be evicted
	ErrorTypePoolExhausted ErrorType = "pool_exhausted"
	// ErrorTypeInvalidArgument represents a bad argument (empty key, destroyed pool, double release)
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeLoadFailed means the loader callback reported failure
	ErrorTypeLoadFailed ErrorType = "load_failed"
	// ErrorTypeOutOfRange means a pointer does not belong to the pool
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	// ErrorTypeStaleHandle means a handle's id no longer matches its slot
	ErrorTypeStaleHandle ErrorType = "stale_handle"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeData represents decode errors in asset payloads
	ErrorTypeData ErrorType = "data"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Sentinels usable with errors.Is. They match on type only.
var (
	ErrPoolExhausted   = &Error{Type: ErrorTypePoolExhausted, Message: "pool exhausted"}
	ErrInvalidArgument = &Error{Type: ErrorTypeInvalidArgument, Message: "invalid argument"}
	ErrLoadFailed      = &Error{Type: ErrorTypeLoadFailed, Message: "load failed"}
	ErrOutOfRange      = &Error{Type: ErrorTypeOutOfRange, Message: "pointer out of range"}
	ErrStaleHandle     = &Error{Type: ErrorTypeStaleHandle, Message: "stale handle"}
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value, or nil when absent.
func (e *Error) Detail(key string) interface{} {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a format string.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// LoadFailed builds the error returned when a loader rejects key.
func LoadFailed(pool, key string, cause error) *Error {
	e := &Error{
		Type:    ErrorTypeLoadFailed,
		Message: fmt.Sprintf("failed to load %q", key),
		Cause:   cause,
		Stack:   captureStack(2),
	}
	return e.WithDetail("pool", pool).WithDetail("key", key)
}

// IsRecoverable returns false only for out-of-range errors, which indicate
// a caller bug rather than a runtime condition.
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return true
	}

	switch e.Type {
	case ErrorTypeOutOfRange:
		return false
	default:
		return true
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
