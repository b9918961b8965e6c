package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/phrazzld/taskapi/internal/store"
)

// Task service errors. Callers match them with errors.Is; the API layer maps
// them to HTTP status codes.
var (
	// ErrTaskNotFound indicates that no task exists with the requested ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTask indicates the submitted task failed field validation.
	ErrInvalidTask = fmt.Errorf("%w: invalid task", domain.ErrValidation)

	// ErrIDMismatch indicates an update whose path ID differs from the body ID.
	ErrIDMismatch = domain.NewValidationError("id", "does not match the task in the request body", nil)

	// ErrStoreUnavailable wraps any failure of the task store other than a missing row.
	ErrStoreUnavailable = errors.New("task store unavailable")

	// ErrCacheUnavailable wraps any failure of the task cache.
	ErrCacheUnavailable = errors.New("task cache unavailable")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "list_tasks", "update_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel errors directly without wrapping.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	if errors.Is(err, ErrIDMismatch) {
		return ErrIDMismatch
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func storeError(operation, message string, err error) error {
	if store.IsNotFoundError(err) {
		return ErrTaskNotFound
	}
	if errors.Is(err, store.ErrConnection) {
		message += " (database connection lost)"
	}
	return NewTaskServiceError(operation, message, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
}

func cacheError(operation, message string, err error) error {
	return NewTaskServiceError(operation, message, fmt.Errorf("%w: %w", ErrCacheUnavailable, err))
}
