package status

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Murmur/internal/api/handlers"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
)

// Action is one interaction mutation
type Action func(ctx context.Context, statusID, accountID string) error

// InteractionHandler handles the favourite/bookmark/pin/mute endpoints.
// Each responds with the status rehydrated for the caller.
type InteractionHandler struct {
	interactions interactions.Service
	statuses     statuses.Service
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactionService interactions.Service, statusService statuses.Service) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactionService,
		statuses:     statusService,
	}
}

// Actions maps route suffixes to their mutation
func (h *InteractionHandler) Actions() map[string]Action {
	return map[string]Action{
		"favourite":   h.interactions.Favourite,
		"unfavourite": h.interactions.Unfavourite,
		"bookmark":    h.interactions.Bookmark,
		"unbookmark":  h.interactions.Unbookmark,
		"pin":         h.interactions.Pin,
		"unpin":       h.interactions.Unpin,
		"mute":        h.interactions.Mute,
		"unmute":      h.interactions.Unmute,
	}
}

// Handle wraps action as a handler
// POST /api/v1/statuses/{id}/{action}
func (h *InteractionHandler) Handle(action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "id is required")
			return
		}

		accountID := middleware.GetAccountID(r)
		if accountID == "" {
			handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
			return
		}

		if err := action(r.Context(), id, accountID); err != nil {
			handleServiceError(w, r, err)
			return
		}

		view, err := h.statuses.Hydrate(r.Context(), statuses.HydrateRequest{
			StatusID:      id,
			ViewerID:      accountID,
			FailOnMissing: true,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		handlers.WriteJSON(w, http.StatusOK, view)
	}
}
