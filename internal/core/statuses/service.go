package statuses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// DefaultMaxReblogDepth bounds reblog resolution. Reblogs of reblogs carry
// no meaning for clients, so a short chain is enough.
const DefaultMaxReblogDepth = 3

type statusService struct {
	store          Store
	counter        *Counter
	viewerState    ViewerStateProvider
	urls           *URLBuilder
	logger         *slog.Logger
	now            func() time.Time
	maxReblogDepth int
}

// NewStatusService creates the status hydrator
func NewStatusService(store Store, viewerState ViewerStateProvider, urls *URLBuilder, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &statusService{
		store:          store,
		counter:        NewCounter(store),
		viewerState:    viewerState,
		urls:           urls,
		logger:         logger,
		now:            time.Now,
		maxReblogDepth: DefaultMaxReblogDepth,
	}
}

// Hydrate assembles a status view. Reblog targets are resolved with a
// visited set threaded through the recursion so self- and mutually-reblogging
// statuses terminate in a stub.
func (s *statusService) Hydrate(ctx context.Context, req HydrateRequest) (*StatusView, error) {
	return s.hydrate(ctx, req, make(map[string]struct{}), 0)
}

func (s *statusService) hydrate(ctx context.Context, req HydrateRequest, visited map[string]struct{}, depth int) (*StatusView, error) {
	if _, seen := visited[req.StatusID]; seen || depth > s.maxReblogDepth {
		s.logger.Debug("reblog chain cut short",
			"status_id", req.StatusID,
			"depth", depth,
			"cycle", seen)
		return newStubView(req.StatusID), nil
	}
	visited[req.StatusID] = struct{}{}

	status, err := s.store.GetStatus(ctx, req.StatusID)
	if err != nil {
		if errors.Is(err, ErrStatusNotFound) {
			if req.FailOnMissing {
				return nil, ErrStatusNotFound
			}
			return newStubView(req.StatusID), nil
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	account, err := s.store.GetAccount(ctx, status.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, s.invariantViolation(status.ID, "account", status.AccountID)
		}
		return nil, fmt.Errorf("failed to get status owner: %w", err)
	}

	view := &StatusView{
		ID:                 status.ID,
		Text:               status.Text,
		Content:            status.Content,
		SpoilerText:        status.SpoilerText,
		Sensitive:          status.Sensitive,
		Visibility:         status.Visibility,
		Language:           status.Language,
		CreatedAt:          status.CreatedAt,
		EditedAt:           status.EditedAt,
		InReplyToID:        status.InReplyToID,
		InReplyToAccountID: status.InReplyToAccountID,
		Account:            newAccountView(account),
	}
	view.URI, view.URL = s.links(status)

	if status.ReblogOfID != nil {
		reblog, err := s.hydrate(ctx, HydrateRequest{
			StatusID:      *status.ReblogOfID,
			ViewerID:      req.ViewerID,
			FailOnMissing: false,
		}, visited, depth+1)
		if err != nil {
			return nil, err
		}
		view.Reblog = reblog
	}

	view.MediaAttachments, err = s.media(ctx, status)
	if err != nil {
		return nil, err
	}

	if status.Poll != nil {
		view.Poll, err = s.poll(ctx, status.Poll, req.ViewerID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.counts(ctx, view); err != nil {
		return nil, err
	}

	if req.ViewerID != "" {
		if err := s.viewerFlags(ctx, view, req.ViewerID); err != nil {
			return nil, err
		}
	}

	return view, nil
}

// links prefers the stored uri/url of federated statuses
func (s *statusService) links(status *Status) (string, string) {
	built := s.urls.Status(status.ID)
	uri, url := built, built
	if status.URI != nil && *status.URI != "" {
		uri = *status.URI
	}
	if status.URL != nil && *status.URL != "" {
		url = *status.URL
	}
	return uri, url
}

func (s *statusService) media(ctx context.Context, status *Status) ([]MediaView, error) {
	views := make([]MediaView, 0, len(status.MediaIDs))
	for _, id := range status.MediaIDs {
		m, err := s.store.GetMedia(ctx, id)
		if err != nil {
			if errors.Is(err, ErrMediaNotFound) {
				return nil, s.invariantViolation(status.ID, "media", id)
			}
			return nil, fmt.Errorf("failed to get media: %w", err)
		}
		views = append(views, newMediaView(m))
	}
	return views, nil
}

func (s *statusService) poll(ctx context.Context, poll *Poll, viewerID string) (*PollView, error) {
	tally, err := s.counter.PollTally(ctx, poll)
	if err != nil {
		return nil, err
	}

	view := &PollView{
		ID:          poll.ID,
		ExpiresAt:   poll.ExpiresAt,
		Expired:     poll.Expired(s.now()),
		Multiple:    poll.Multiple,
		VotesCount:  tally.VotesCount,
		VotersCount: tally.VotersCount,
		Options: lo.Map(poll.Options, func(title string, i int) PollOptionView {
			return PollOptionView{Title: title, VotesCount: tally.Options[i]}
		}),
	}

	if viewerID != "" {
		own, err := s.store.ListAccountVotes(ctx, poll.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list viewer poll votes: %w", err)
		}
		view.OwnVotes = lo.Filter(own, func(choice int, _ int) bool {
			return choice >= 0 && choice < len(poll.Options)
		})
		view.Voted = lo.ToPtr(len(view.OwnVotes) > 0)
	}

	return view, nil
}

// counts runs after owner, media and poll are resolved
func (s *statusService) counts(ctx context.Context, view *StatusView) error {
	var err error
	if view.RepliesCount, err = s.counter.Replies(ctx, view.ID); err != nil {
		return err
	}
	if view.ReblogsCount, err = s.counter.Reblogs(ctx, view.ID); err != nil {
		return err
	}
	if view.FavouritesCount, err = s.counter.Favourites(ctx, view.ID); err != nil {
		return err
	}
	return nil
}

// viewerFlags runs last: resolving the interaction record creates it
func (s *statusService) viewerFlags(ctx context.Context, view *StatusView, viewerID string) error {
	reblogged, err := s.counter.RebloggedBy(ctx, view.ID, viewerID)
	if err != nil {
		return err
	}

	state, err := s.viewerState.GetOrCreate(ctx, view.ID, viewerID)
	if err != nil {
		return fmt.Errorf("failed to resolve viewer state: %w", err)
	}

	view.Reblogged = lo.ToPtr(reblogged)
	view.Favourited = lo.ToPtr(state.Favourite)
	view.Bookmarked = lo.ToPtr(state.Bookmark)
	view.Pinned = lo.ToPtr(state.Pin)
	view.Muted = lo.ToPtr(state.Mute)
	return nil
}

func (s *statusService) invariantViolation(statusID, resource, id string) error {
	s.logger.Error("status references missing data",
		"status_id", statusID,
		"resource", resource,
		"id", id)
	return NewInvariantViolationError(statusID, resource, id)
}
