package errors

import (
	"errors"
	"fmt"
)

// Category represents the class of a trade-core error
type Category string

const (
	// Caller passed a value the algorithms must not silently coerce
	CategoryInvalidParameter Category = "INVALID_PARAMETER"

	// No contract spec entry exists for the requested symbol
	CategoryUnknownSymbol Category = "UNKNOWN_SYMBOL"

	// An indicator or advisory source could not be reached
	CategoryProviderUnavailable Category = "PROVIDER_UNAVAILABLE"

	// The execution collaborator returned an error or timed out
	CategoryExecutionFailed Category = "EXECUTION_FAILED"
)

// CoreError is a categorized error with component and operation context
type CoreError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s in %s: %v", e.Category, e.Component, e.Message, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s in %s", e.Category, e.Component, e.Message, e.Operation)
}

// Unwrap returns the underlying error for error unwrapping
func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// New creates a new categorized error
func New(category Category, component, operation, message string) *CoreError {
	return &CoreError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Wrap wraps an existing error with trade-core context
func Wrap(err error, category Category, component, operation string) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// NewInvalidParameter creates an InvalidParameter error
func NewInvalidParameter(component, operation, message string) *CoreError {
	return New(CategoryInvalidParameter, component, operation, message)
}

// NewUnknownSymbol creates an UnknownSymbol error for the given symbol
func NewUnknownSymbol(component, operation, symbol string) *CoreError {
	return New(CategoryUnknownSymbol, component, operation, fmt.Sprintf("no contract spec for symbol %s", symbol))
}

// NewProviderUnavailable wraps a provider failure
func NewProviderUnavailable(component, operation string, err error) *CoreError {
	return Wrap(err, CategoryProviderUnavailable, component, operation)
}

// NewExecutionFailed wraps an execution collaborator failure
func NewExecutionFailed(component, operation string, err error) *CoreError {
	return Wrap(err, CategoryExecutionFailed, component, operation)
}

// categoryOf extracts the category from an error chain, or "" if none
func categoryOf(err error) Category {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// IsInvalidParameter reports whether err is an InvalidParameter error
func IsInvalidParameter(err error) bool {
	return categoryOf(err) == CategoryInvalidParameter
}

// IsUnknownSymbol reports whether err is an UnknownSymbol error
func IsUnknownSymbol(err error) bool {
	return categoryOf(err) == CategoryUnknownSymbol
}

// IsProviderUnavailable reports whether err is a ProviderUnavailable error
func IsProviderUnavailable(err error) bool {
	return categoryOf(err) == CategoryProviderUnavailable
}

// IsExecutionFailed reports whether err is an ExecutionFailed error
func IsExecutionFailed(err error) bool {
	return categoryOf(err) == CategoryExecutionFailed
}
