// Package exception provides the error type shared by the backend's infrastructure layers.
// An AppError records the module where a failure happened, a short message, the wrapped
// cause and the stack at construction time.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// AppError is the error returned by configuration, datasource, migration and repository code.
type AppError struct {
	// Module indicates where the error occurred (e.g. "config", "GormEmployeeRepository.Save").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// NewAppError creates a new AppError.
func NewAppError(module, message string, originalErr error) *AppError {
	return &AppError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

// NewAppErrorf creates a new AppError using a format string.
// If the last argument is an error it becomes the wrapped cause and is not used for formatting.
//
// Examples:
//
//	NewAppErrorf("config", "invalid port %d", 0)
//	NewAppErrorf("migration", "failed to open %s", path, err)
func NewAppErrorf(module, format string, a ...interface{}) *AppError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return &AppError{
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// IsAppError reports whether err, or any error it wraps, is an *AppError.
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// IsTemporary reports whether err looks like a transient connectivity failure.
// The readiness probe logs temporary failures at WARN and the rest at ERROR.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "bad connection") ||
		strings.Contains(errStr, "EOF")
}

// ExtractErrorMessage returns the Message of an AppError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
