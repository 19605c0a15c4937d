// Package errors provides the tracker's standardized error model.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"

	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeDuplicateRecordID ErrorCode = "DUPLICATE_RECORD_ID"

	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"

	ErrCodeStorageReadFailed  ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"
	ErrCodeExportFailed       ErrorCode = "EXPORT_FAILED"

	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes one failed rule on one record field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Fields    []FieldError           `json:"fields,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable validation error carrying per-field failures.
func NewValidationError(fields []FieldError) *StandardError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application record validation failed",
		Details:   strings.Join(parts, "; "),
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidArgumentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidArgument,
		Message:   "Invalid argument",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError is returned by update and delete for an id the store does not hold.
func NewNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Application record not found",
		Details:   fmt.Sprintf("id: %s", id),
		Metadata:  map[string]interface{}{"id": id},
		Timestamp: time.Now().UTC(),
	}
}

func NewDuplicateIDError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateRecordID,
		Message:   "Application record id already exists",
		Details:   fmt.Sprintf("id: %s", id),
		Metadata:  map[string]interface{}{"id": id},
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeError reports an import payload that could not be decoded. line and column are
// 1-based; zero means unknown.
func NewDecodeError(format string, line, column int, details string) *StandardError {
	meta := map[string]interface{}{"format": format}
	loc := ""
	if line > 0 {
		meta["line"] = line
		loc = fmt.Sprintf("line %d", line)
		if column > 0 {
			meta["column"] = column
			loc = fmt.Sprintf("line %d, column %d", line, column)
		}
	}
	if loc != "" {
		details = loc + ": " + details
	}
	return &StandardError{
		Code:      ErrCodeDecodeFailed,
		Message:   fmt.Sprintf("Could not decode %s import", format),
		Details:   details,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageReadError creates a retryable storage read error.
func NewStorageReadError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageReadFailed,
		Message:   "Durable storage read failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageWriteError creates a retryable storage write error.
func NewStorageWriteError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFailed,
		Message:   "Durable storage write failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExportError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "Export file could not be written",
		Details:   fmt.Sprintf("file: %s, error: %s", name, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Admin authentication required",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap normalizes any error into a StandardError. StandardErrors pass through unchanged.
func Wrap(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the code of err, or "" when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error code onto the HTTP status written by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidArgument, ErrCodeDecodeFailed:
		return http.StatusBadRequest
	case ErrCodeRecordNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateRecordID:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeStorageReadFailed, ErrCodeStorageWriteFailed, ErrCodeExportFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RECORD"):
		return "RECORD"
	case strings.Contains(codeStr, "DECODE"):
		return "IMPORT"
	case strings.Contains(codeStr, "STORAGE") || strings.Contains(codeStr, "EXPORT"):
		return "STORAGE"
	case strings.Contains(codeStr, "UNAUTHORIZED"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
