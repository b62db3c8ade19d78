package interactions

import (
	"context"
	"time"

	"Murmur/internal/core/notifications"
)

// Service defines the viewer interaction state manager and the mutation
// operations that feed it
type Service interface {
	// GetOrCreate returns the viewer's interaction state for a status,
	// creating the default record (all flags false) on first access.
	// Idempotent and safe under concurrent callers.
	GetOrCreate(ctx context.Context, statusID, accountID string) (*State, error)

	// SetFlags ensures the record exists, then applies only the supplied
	// flags in one atomic update. Concurrent patches are last-write-wins per flag.
	SetFlags(ctx context.Context, statusID, accountID string, patch FlagPatch) (*State, error)

	// Favourite records a favourite and notifies the status author when the
	// favourite is new and the author is someone else
	Favourite(ctx context.Context, statusID, accountID string) error
	Unfavourite(ctx context.Context, statusID, accountID string) error

	Bookmark(ctx context.Context, statusID, accountID string) error
	Unbookmark(ctx context.Context, statusID, accountID string) error

	// Pin is only allowed on the account's own statuses
	Pin(ctx context.Context, statusID, accountID string) error
	Unpin(ctx context.Context, statusID, accountID string) error

	Mute(ctx context.Context, statusID, accountID string) error
	Unmute(ctx context.Context, statusID, accountID string) error
}

// Repository defines the data access interface for interaction state.
// Document stores keep one record per (status, account); relational stores
// keep one row per active relation and derive the record from them.
type Repository interface {
	// EnsureInteraction atomically finds or inserts the default record.
	// A soft-deleted record is resurrected with default flags.
	EnsureInteraction(ctx context.Context, statusID, accountID string) (*State, error)

	// PatchInteraction applies the supplied flags of patch as a single
	// multi-field update and returns the resulting state
	PatchInteraction(ctx context.Context, statusID, accountID string, patch FlagPatch) (*State, error)

	// UpsertRelation makes the relation of kind active. Existing relations
	// are touched (updated_at = now) and reported with Created=false.
	UpsertRelation(ctx context.Context, kind Kind, statusID, accountID string, now time.Time) (*Relation, error)

	// DeleteRelation clears the relation of kind.
	// Returns false if there was nothing to clear.
	DeleteRelation(ctx context.Context, kind Kind, statusID, accountID string) (bool, error)

	// StatusOwner returns the author of a live status.
	// Returns ErrStatusNotFound if the status is absent or deleted.
	StatusOwner(ctx context.Context, statusID string) (string, error)
}

// Notifier emits notifications for interactions
type Notifier interface {
	Notify(ctx context.Context, req notifications.NotifyRequest) (*notifications.Notification, error)
}
