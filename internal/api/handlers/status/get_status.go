// Package status serves the Mastodon-compatible status endpoints.
package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Murmur/internal/api/handlers"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/statuses"
)

// GetStatusHandler handles status retrieval
type GetStatusHandler struct {
	service statuses.Service
}

// NewGetStatusHandler creates a new get status handler
func NewGetStatusHandler(service statuses.Service) *GetStatusHandler {
	return &GetStatusHandler{service: service}
}

// HandleGetStatus returns the hydrated status. Viewer flags are only
// present when the request is authenticated.
// GET /api/v1/statuses/{id}
func (h *GetStatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "id is required")
		return
	}

	view, err := h.service.Hydrate(r.Context(), statuses.HydrateRequest{
		StatusID:      id,
		ViewerID:      middleware.GetAccountID(r),
		FailOnMissing: true,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, view)
}
