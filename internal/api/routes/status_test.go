package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Murmur/internal/api/middleware"
	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
)

type stubStatuses struct {
	viewers []string
}

func (s *stubStatuses) Hydrate(ctx context.Context, req statuses.HydrateRequest) (*statuses.StatusView, error) {
	s.viewers = append(s.viewers, req.ViewerID)
	return &statuses.StatusView{ID: req.StatusID}, nil
}

// stubInteractions records favourites; the other mutations are no-ops
type stubInteractions struct {
	favourited []string
}

func (s *stubInteractions) GetOrCreate(ctx context.Context, statusID, accountID string) (*interactions.State, error) {
	return interactions.NewState(statusID, accountID), nil
}

func (s *stubInteractions) SetFlags(ctx context.Context, statusID, accountID string, patch interactions.FlagPatch) (*interactions.State, error) {
	return interactions.NewState(statusID, accountID), nil
}

func (s *stubInteractions) Favourite(ctx context.Context, statusID, accountID string) error {
	s.favourited = append(s.favourited, accountID)
	return nil
}

func (s *stubInteractions) Unfavourite(ctx context.Context, statusID, accountID string) error { return nil }
func (s *stubInteractions) Bookmark(ctx context.Context, statusID, accountID string) error    { return nil }
func (s *stubInteractions) Unbookmark(ctx context.Context, statusID, accountID string) error  { return nil }
func (s *stubInteractions) Pin(ctx context.Context, statusID, accountID string) error         { return nil }
func (s *stubInteractions) Unpin(ctx context.Context, statusID, accountID string) error       { return nil }
func (s *stubInteractions) Mute(ctx context.Context, statusID, accountID string) error        { return nil }
func (s *stubInteractions) Unmute(ctx context.Context, statusID, accountID string) error      { return nil }

func TestRegisterStatusRoutes(t *testing.T) {
	auth := middleware.NewAuthMiddleware("routes-test-secret-123", nil)
	token, err := auth.IssueToken("42", time.Hour)
	require.NoError(t, err)

	statusService := &stubStatuses{}
	interactionService := &stubInteractions{}

	r := chi.NewRouter()
	RegisterStatusRoutes(r, statusService, interactionService, auth)

	do := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/statuses/1", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/statuses/1", token))
	assert.Equal(t, []string{"", "42"}, statusService.viewers)

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/v1/statuses/1/favourite", ""))
	assert.Empty(t, interactionService.favourited)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/v1/statuses/1/favourite", token))
	assert.Equal(t, []string{"42"}, interactionService.favourited)

	assert.Equal(t, http.StatusMethodNotAllowed, do(http.MethodGet, "/api/v1/statuses/1/favourite", token))
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/api/v1/statuses/1/reblog", token))
}
