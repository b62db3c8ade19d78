package status

import (
	"errors"
	"log/slog"
	"net/http"

	"Murmur/internal/api/handlers"
	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
	"Murmur/internal/core/storage"
)

// handleServiceError converts service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, statuses.ErrStatusNotFound), errors.Is(err, interactions.ErrStatusNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Record not found")
	case errors.Is(err, interactions.ErrNotAuthorized):
		handlers.WriteError(w, http.StatusUnprocessableEntity, "NotAuthorized", "Only your own statuses can be pinned")
	case errors.Is(err, interactions.ErrInvalidKind):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Unknown interaction")
	case storage.IsUnavailable(err):
		slog.Warn("store unavailable", "path", r.URL.Path, "error", err)
		handlers.WriteError(w, http.StatusServiceUnavailable, "ServiceUnavailable", "Storage is temporarily unavailable")
	case statuses.IsInvariantViolation(err):
		// already logged with details by the hydrator
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	default:
		slog.Error("status handler error", "path", r.URL.Path, "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
