package routes

import (
	"github.com/go-chi/chi/v5"

	"Murmur/internal/api/handlers/status"
	"Murmur/internal/api/middleware"
	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
)

// RegisterStatusRoutes registers the Mastodon-compatible status endpoints
func RegisterStatusRoutes(r chi.Router, statusService statuses.Service, interactionService interactions.Service, authMiddleware *middleware.AuthMiddleware) {
	getStatusHandler := status.NewGetStatusHandler(statusService)
	interactionHandler := status.NewInteractionHandler(interactionService, statusService)

	// Query endpoint - viewer flags are filled in when authenticated
	r.With(authMiddleware.OptionalAuth).Get("/api/v1/statuses/{id}", getStatusHandler.HandleGetStatus)

	// Mutation endpoints - require authentication
	for name, action := range interactionHandler.Actions() {
		r.With(authMiddleware.RequireAuth).Post("/api/v1/statuses/{id}/"+name, interactionHandler.Handle(action))
	}
}
