// Package errors provides structured error handling for nmapdb operations.
// It defines error codes, error types, and provides utilities for creating
// and classifying errors raised while importing scan reports.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeCanceled      ErrorCode = "CANCELED"

	// Input errors.
	CodeMissingInput    ErrorCode = "MISSING_INPUT"
	CodeFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	CodeMalformedReport ErrorCode = "MALFORMED_REPORT"

	// Database errors.
	CodeDatabaseConnection  ErrorCode = "DATABASE_CONNECTION"
	CodeDatabaseQuery       ErrorCode = "DATABASE_QUERY"
	CodeDatabaseMigration   ErrorCode = "DATABASE_MIGRATION"
	CodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
)

// ImportError represents an error tied to a single input report.
type ImportError struct {
	Code    ErrorCode
	Message string
	File    string
	Cause   error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.File != "" {
		msg = fmt.Sprintf("%s (file: %s)", msg, e.File)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// NewImportError creates a new import error for a specific file.
func NewImportError(code ErrorCode, message, file string) *ImportError {
	return &ImportError{
		Code:    code,
		Message: message,
		File:    file,
	}
}

// WrapImportError wraps an existing error as an import error.
func WrapImportError(code ErrorCode, message, file string, err error) *ImportError {
	return &ImportError{
		Code:    code,
		Message: message,
		File:    file,
		Cause:   err,
	}
}

// DatabaseError represents database-related errors.
type DatabaseError struct {
	Code      ErrorCode
	Message   string
	Operation string
	Key       string
	Cause     error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("%s (operation: %s)", msg, e.Operation)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// WithKey records the row key the failing statement was writing.
func (e *DatabaseError) WithKey(key string) *DatabaseError {
	e.Key = key
	return e
}

// NewDatabaseError creates a new database error.
func NewDatabaseError(code ErrorCode, message string) *DatabaseError {
	return &DatabaseError{
		Code:    code,
		Message: message,
	}
}

// WrapDatabaseError wraps an existing error as a database error.
func WrapDatabaseError(code ErrorCode, message string, err error) *DatabaseError {
	return &DatabaseError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// GetCode extracts the error code from the first coded error in the chain.
func GetCode(err error) ErrorCode {
	for err != nil {
		switch e := err.(type) {
		case *ImportError:
			return e.Code
		case *DatabaseError:
			return e.Code
		case *ConfigError:
			return e.Code
		}
		err = stderrors.Unwrap(err)
	}
	return CodeUnknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// IsFatal determines if an error must terminate the run.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeFileNotFound, CodeMalformedReport, CodeConstraintViolation:
		return false
	default:
		return err != nil
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Common error creation functions

// ErrFileNotFound creates an error for a report that cannot be opened.
func ErrFileNotFound(file string, err error) *ImportError {
	return WrapImportError(CodeFileNotFound, "Report file does not exist or is unreadable", file, err)
}

// ErrMalformedReport creates an error for a report that is not well-formed XML.
func ErrMalformedReport(file string, err error) *ImportError {
	return WrapImportError(CodeMalformedReport, "Report file is not well-formed XML", file, err)
}

// ErrMissingInput creates an error for a run without report files.
func ErrMissingInput() *ConfigError {
	return NewConfigError(CodeMissingInput, "No input report files supplied")
}

// ErrDatabaseConnection creates an error for database connection failures.
func ErrDatabaseConnection(err error) *DatabaseError {
	return WrapDatabaseError(CodeDatabaseConnection, "Failed to connect to database", err)
}

// ErrSchema creates an error for a schema script that failed to execute.
func ErrSchema(file string, err error) *DatabaseError {
	e := WrapDatabaseError(CodeDatabaseMigration, "Failed to execute schema definition", err)
	e.Operation = file
	return e
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrCanceled creates an error for a run aborted by its context.
func ErrCanceled(err error) *ConfigError {
	return WrapConfigError(CodeCanceled, "Run canceled before commit", err)
}
