package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskapi/internal/api/shared"
	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/phrazzld/taskapi/internal/service"
)

// MapErrorToStatusCode maps service errors to HTTP status codes without
// exposing their text to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Store and cache outages, and anything unexpected
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrIDMismatch):
		return "Task ID in path does not match task ID in body"

	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return "Invalid title: required field"

	case errors.Is(err, domain.ErrTaskTitleTooLong):
		return "Invalid title: too long"

	case errors.Is(err, domain.ErrTaskDescriptionTooLong):
		return "Invalid description: too long"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid task ID"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid task"

	case errors.Is(err, service.ErrStoreUnavailable):
		return "Task store unavailable"

	case errors.Is(err, service.ErrCacheUnavailable):
		return "Task cache unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a request validation failure into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}

	fe := fieldErrs[0]
	if msg := getValidationTagMessage(fe.Tag()); msg != "" {
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), msg)
	}
	return fmt.Sprintf("Invalid %s", fe.Field())
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too long"
	default:
		return ""
	}
}

// HandleAPIError writes the response for a failed service call.
// Not-found results get an empty 404 body; every other error gets a JSON
// body with a safe message and the request's trace ID.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNotFound {
		shared.RespondWithStatus(w, http.StatusNotFound)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
