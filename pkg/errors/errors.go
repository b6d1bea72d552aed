// Package errors provides structured error types for the PDF viewer.
// Errors carry a code, a category, key-value context, an optional cause and
// remediation suggestions.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryValidation Category = "validation" // Host data that cannot be displayed
	CategoryLicense    Category = "license"    // Feature gated behind a license
	CategoryEngine     Category = "engine"     // PDF engine load/render failures
	CategoryCommand    Category = "command"    // Shell command errors
	CategoryNetwork    Category = "network"    // Network/connectivity errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// ViewerError is a structured error with context and suggestions.
type ViewerError struct {
	// Code is a unique identifier for this error type (e.g., "PAYLOAD_INVALID_BASE64")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message is the primary error message describing what went wrong
	Message string

	// Context provides additional key-value details about the error
	Context map[string]string

	// Cause is the underlying error that triggered this error
	Cause error

	// Suggestions are actionable remediation steps for the user
	Suggestions []string
}

// Error implements the error interface.
func (e *ViewerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ViewerError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target for errors.Is() checks.
// Two ViewerErrors match if they have the same Code.
func (e *ViewerError) Is(target error) bool {
	if t, ok := target.(*ViewerError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new ViewerError with the given code, category, and message.
func New(code string, category Category, message string) *ViewerError {
	return &ViewerError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *ViewerError) WithContext(key, value string) *ViewerError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error and returns the error for chaining.
func (e *ViewerError) WithCause(cause error) *ViewerError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion and returns the error for chaining.
func (e *ViewerError) WithSuggestion(suggestion string) *ViewerError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple remediation suggestions.
func (e *ViewerError) WithSuggestions(suggestions ...string) *ViewerError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasContext returns true if the error has context information.
func (e *ViewerError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *ViewerError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as sorted key="value" pairs.
func (e *ViewerError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// Wrap wraps an existing error with a ViewerError.
func Wrap(err error, code string, category Category, message string) *ViewerError {
	return New(code, category, message).WithCause(err)
}

// AsViewerError attempts to convert an error to a ViewerError.
// Wrapped chains are searched, so fmt.Errorf("...: %w", viewerErr) still matches.
func AsViewerError(err error) (*ViewerError, bool) {
	for err != nil {
		if ve, ok := err.(*ViewerError); ok {
			return ve, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// IsCategory checks if an error is a ViewerError with the given category.
func IsCategory(err error, category Category) bool {
	if ve, ok := AsViewerError(err); ok {
		return ve.Category == category
	}
	return false
}

// IsCode checks if an error is a ViewerError with the given code.
func IsCode(err error, code string) bool {
	if ve, ok := AsViewerError(err); ok {
		return ve.Code == code
	}
	return false
}

// -----------------------------------------------------------------------------
// Helper Constructors for Common Error Types
// -----------------------------------------------------------------------------

// ConfigError creates a new configuration error.
func ConfigError(code, message string) *ViewerError {
	return New(code, CategoryConfig, message)
}

// ConfigErrorf creates a new configuration error with formatted message.
func ConfigErrorf(code, format string, args ...interface{}) *ViewerError {
	return New(code, CategoryConfig, fmt.Sprintf(format, args...))
}

// ValidationError creates a new validation error.
// Use for host data that cannot be displayed as given.
func ValidationError(code, message string) *ViewerError {
	return New(code, CategoryValidation, message)
}

// ValidationErrorf creates a new validation error with formatted message.
func ValidationErrorf(code, format string, args ...interface{}) *ViewerError {
	return New(code, CategoryValidation, fmt.Sprintf(format, args...))
}

// LicenseError creates a new license error.
func LicenseError(code, message string) *ViewerError {
	return New(code, CategoryLicense, message)
}

// EngineError creates a new PDF engine error.
func EngineError(code, message string) *ViewerError {
	return New(code, CategoryEngine, message)
}

// EngineErrorf creates a new engine error with formatted message.
func EngineErrorf(code, format string, args ...interface{}) *ViewerError {
	return New(code, CategoryEngine, fmt.Sprintf(format, args...))
}

// CommandError creates a new shell command error.
func CommandError(code, message string) *ViewerError {
	return New(code, CategoryCommand, message)
}

// CommandErrorf creates a new command error with formatted message.
func CommandErrorf(code, format string, args ...interface{}) *ViewerError {
	return New(code, CategoryCommand, fmt.Sprintf(format, args...))
}

// NetworkError creates a new network/connectivity error.
func NetworkError(code, message string) *ViewerError {
	return New(code, CategoryNetwork, message)
}

// IOError creates a new file/IO error.
func IOError(code, message string) *ViewerError {
	return New(code, CategoryIO, message)
}

// InternalError creates a new internal/unexpected error.
func InternalError(code, message string) *ViewerError {
	return New(code, CategoryInternal, message)
}

// -----------------------------------------------------------------------------
// Wrapping Helpers for Common Error Types
// -----------------------------------------------------------------------------

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryConfig, message)
}

// WrapValidation wraps an error as a validation error.
func WrapValidation(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryValidation, message)
}

// WrapLicense wraps an error as a license error.
func WrapLicense(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryLicense, message)
}

// WrapEngine wraps an error as an engine error.
func WrapEngine(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryEngine, message)
}

// WrapNetwork wraps an error as a network error.
func WrapNetwork(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryNetwork, message)
}

// WrapIO wraps an error as an IO error.
func WrapIO(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryIO, message)
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, code, message string) *ViewerError {
	return Wrap(err, code, CategoryInternal, message)
}
