// Package errors provides structured error types for parbench.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryWorker   ErrorCategory = "WORKER"
	ErrCategoryDataset  ErrorCategory = "DATASET"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Config codes
	CodeInvalidWorkerCount = "INVALID_WORKER_COUNT"
	CodeInvalidScale       = "INVALID_SCALE"
	CodeInvalidStrategy    = "INVALID_STRATEGY"
	CodeInvalidConfig      = "INVALID_CONFIG"

	// Worker codes
	CodeWorkerFailed      = "WORKER_FAILED"
	CodeWorkerSpawnFailed = "WORKER_SPAWN_FAILED"
	CodeWorkerProtocol    = "WORKER_PROTOCOL"

	// Dataset codes
	CodeDatasetNotFound    = "DATASET_NOT_FOUND"
	CodeDatasetParse       = "DATASET_PARSE"
	CodeDatasetEmptyColumn = "DATASET_EMPTY_COLUMN"

	// Storage codes
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// BenchError is the structured error type used throughout the system.
type BenchError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new BenchError.
func New(category ErrorCategory, code, message string) *BenchError {
	return &BenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new BenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *BenchError {
	return &BenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *BenchError) WithDetails(details map[string]interface{}) *BenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCategory(err error) ErrorCategory {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCode(err error) string {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsConfigError reports whether err is a configuration error. The
// orchestrator treats these as fatal for the whole run.
func IsConfigError(err error) bool {
	return GetCategory(err) == ErrCategoryConfig
}

// isRetryable determines if an error code is retryable. Benchmark calls are
// never retried; only dataset downloads are.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryStorage && code == CodeDownloadFailed
}

// Convenience constructors for common errors.

func NewConfigError(code, message string) *BenchError {
	return New(ErrCategoryConfig, code, message)
}

// InvalidWorkerCount is returned when a worker count is zero or negative.
func InvalidWorkerCount(workers int) *BenchError {
	return NewConfigError(CodeInvalidWorkerCount,
		fmt.Sprintf("worker count must be positive, got %d", workers)).
		WithDetails(map[string]interface{}{"workers": workers})
}

func NewWorkerError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryWorker, code, message, cause)
}

func NewDatasetError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryDataset, code, message, cause)
}

func NewStorageError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
