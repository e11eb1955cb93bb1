package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the pipeline stage or layer an error originated from
type ErrorType string

const (
	ErrTypeFetch     ErrorType = "FETCH"
	ErrTypeParse     ErrorType = "PARSE"
	ErrTypeTransform ErrorType = "TRANSFORM"
	ErrTypeStorage   ErrorType = "STORAGE"
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeNotFound  ErrorType = "NOT_FOUND"
)

// AppError represents a dataset pipeline error
type AppError struct {
	Type    ErrorType
	Dataset string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Type))
	b.WriteString("] ")
	if e.Dataset != "" {
		b.WriteString(e.Dataset)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDataset sets the dataset the error belongs to
func (e *AppError) WithDataset(dataset string) *AppError {
	e.Dataset = dataset
	return e
}

// WithRow records the 0-based data row that failed
func (e *AppError) WithRow(row int) *AppError {
	return e.WithContext("row", row)
}

// LogAttrs flattens the error into key/value pairs for slog
func (e *AppError) LogAttrs() []any {
	attrs := []any{"error_type", string(e.Type)}
	if e.Dataset != "" {
		attrs = append(attrs, "dataset", e.Dataset)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, e.Context[k])
	}
	return attrs
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewFetchError creates a network or file retrieval error
func NewFetchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFetch, message, cause)
}

// NewParseError creates an archive or row parsing error
func NewParseError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParse, message, cause)
}

// NewTransformError creates an error for invalid derived values
func NewTransformError(message string, cause error) *AppError {
	return NewAppError(ErrTypeTransform, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether any AppError in err's chain has the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// AsAppError returns the outermost AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
