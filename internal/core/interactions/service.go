package interactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Murmur/internal/core/notifications"
)

// activityTypeFavourite is the activity type stored on favourite notifications
const activityTypeFavourite = "Favourite"

type interactionService struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewInteractionService creates a new interaction service.
// notifier may be nil, in which case favourites emit no notifications.
func NewInteractionService(repo Repository, notifier Notifier, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &interactionService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrCreate returns the viewer's interaction state, creating it if needed
func (s *interactionService) GetOrCreate(ctx context.Context, statusID, accountID string) (*State, error) {
	state, err := s.repo.EnsureInteraction(ctx, statusID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure interaction state: %w", err)
	}
	return state, nil
}

// SetFlags ensures the record then applies the patch as a second call
func (s *interactionService) SetFlags(ctx context.Context, statusID, accountID string, patch FlagPatch) (*State, error) {
	state, err := s.GetOrCreate(ctx, statusID, accountID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return state, nil
	}

	state, err = s.repo.PatchInteraction(ctx, statusID, accountID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to patch interaction state: %w", err)
	}
	return state, nil
}

func (s *interactionService) Favourite(ctx context.Context, statusID, accountID string) error {
	owner, err := s.statusOwner(ctx, statusID)
	if err != nil {
		return err
	}

	rel, err := s.repo.UpsertRelation(ctx, KindFavourite, statusID, accountID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to favourite status: %w", err)
	}

	if rel.Created && owner != accountID {
		s.notifyFavourite(ctx, owner, rel)
	}
	return nil
}

func (s *interactionService) Unfavourite(ctx context.Context, statusID, accountID string) error {
	return s.clear(ctx, KindFavourite, statusID, accountID)
}

func (s *interactionService) Bookmark(ctx context.Context, statusID, accountID string) error {
	return s.set(ctx, KindBookmark, statusID, accountID)
}

func (s *interactionService) Unbookmark(ctx context.Context, statusID, accountID string) error {
	return s.clear(ctx, KindBookmark, statusID, accountID)
}

func (s *interactionService) Pin(ctx context.Context, statusID, accountID string) error {
	owner, err := s.statusOwner(ctx, statusID)
	if err != nil {
		return err
	}
	if owner != accountID {
		return ErrNotAuthorized
	}

	if _, err := s.repo.UpsertRelation(ctx, KindPin, statusID, accountID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to pin status: %w", err)
	}
	return nil
}

func (s *interactionService) Unpin(ctx context.Context, statusID, accountID string) error {
	return s.clear(ctx, KindPin, statusID, accountID)
}

func (s *interactionService) Mute(ctx context.Context, statusID, accountID string) error {
	return s.set(ctx, KindMute, statusID, accountID)
}

func (s *interactionService) Unmute(ctx context.Context, statusID, accountID string) error {
	return s.clear(ctx, KindMute, statusID, accountID)
}

func (s *interactionService) set(ctx context.Context, kind Kind, statusID, accountID string) error {
	if _, err := s.statusOwner(ctx, statusID); err != nil {
		return err
	}
	if _, err := s.repo.UpsertRelation(ctx, kind, statusID, accountID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to set %s: %w", kind, err)
	}
	return nil
}

// clear is idempotent: clearing an absent relation is not an error
func (s *interactionService) clear(ctx context.Context, kind Kind, statusID, accountID string) error {
	if _, err := s.statusOwner(ctx, statusID); err != nil {
		return err
	}
	if _, err := s.repo.DeleteRelation(ctx, kind, statusID, accountID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", kind, err)
	}
	return nil
}

func (s *interactionService) statusOwner(ctx context.Context, statusID string) (string, error) {
	owner, err := s.repo.StatusOwner(ctx, statusID)
	if err != nil {
		if errors.Is(err, ErrStatusNotFound) {
			return "", ErrStatusNotFound
		}
		return "", fmt.Errorf("failed to look up status owner: %w", err)
	}
	return owner, nil
}

// notifyFavourite is best effort: the favourite itself already succeeded
func (s *interactionService) notifyFavourite(ctx context.Context, owner string, rel *Relation) {
	if s.notifier == nil {
		return
	}

	createdAt := rel.CreatedAt
	_, err := s.notifier.Notify(ctx, notifications.NotifyRequest{
		RecipientID:  owner,
		ActorID:      rel.AccountID,
		ActivityID:   rel.ID,
		ActivityType: activityTypeFavourite,
		Kind:         notifications.KindFavourite,
		CreatedAt:    &createdAt,
	})
	if err != nil {
		s.logger.Warn("failed to notify status owner of favourite",
			"status_id", rel.StatusID,
			"recipient", owner,
			"actor", rel.AccountID,
			"error", err)
	}
}
