package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskapi/internal/api/shared"
	"github.com/phrazzld/taskapi/internal/domain"
)

// parseTaskID parses a positive task ID.
func parseTaskID(raw, paramName string) (int64, error) {
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}
	return id, nil
}

// getPathID extracts a task ID from the chi URL parameter paramName.
func getPathID(r *http.Request, paramName string) (int64, error) {
	return parseTaskID(chi.URLParam(r, paramName), paramName)
}

// getQueryID extracts a task ID from the query string parameter paramName.
func getQueryID(r *http.Request, paramName string) (int64, error) {
	return parseTaskID(r.URL.Query().Get(paramName), paramName)
}

// handleTaskID resolves the task ID for a request, preferring the path
// parameter and falling back to the query string. It writes a 400 response
// and returns false when no valid ID is present.
func handleTaskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	var (
		id  int64
		err error
	)
	if chi.URLParam(r, "id") != "" {
		id, err = getPathID(r, "id")
	} else {
		id, err = getQueryID(r, "id")
	}
	if err != nil {
		log.Debug("invalid task ID", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return id, true
}
