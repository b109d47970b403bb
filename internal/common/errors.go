package common

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Common error types used across the application
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ErrorCollector collects errors produced by independent units of work.
// It is safe to use only from a single goroutine.
type ErrorCollector struct {
	err   error
	count int
}

// Add adds an error to the collector
func (ec *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}
	ec.err = multierr.Append(ec.err, err)
	ec.count++
}

// AddWithContext adds an error with additional context
func (ec *ErrorCollector) AddWithContext(err error, context string) {
	ec.Add(WrapError(err, context))
}

// HasErrors returns true if any errors were collected
func (ec *ErrorCollector) HasErrors() bool {
	return ec.count > 0
}

// Count returns the number of collected errors
func (ec *ErrorCollector) Count() int {
	return ec.count
}

// Error returns a combined error from all collected errors
func (ec *ErrorCollector) Error() error {
	return ec.err
}

// Errors returns all collected errors
func (ec *ErrorCollector) Errors() []error {
	return multierr.Errors(ec.err)
}

// Clear removes all collected errors
func (ec *ErrorCollector) Clear() {
	ec.err = nil
	ec.count = 0
}
