package statuses

import (
	"context"

	"Murmur/internal/core/interactions"
)

// Service defines status view hydration
type Service interface {
	// Hydrate assembles the viewer-scoped view of a status.
	// Flow: status -> owner -> intrinsic fields -> links -> reblog (recursive,
	// stub on absence or cycle) -> media -> poll -> counts -> viewer state.
	// Returns ErrStatusNotFound only for an absent root when FailOnMissing is set.
	Hydrate(ctx context.Context, req HydrateRequest) (*StatusView, error)
}

// HydrateRequest selects the status to hydrate.
// An empty ViewerID hydrates anonymously and touches no interaction state.
type HydrateRequest struct {
	StatusID      string
	ViewerID      string
	FailOnMissing bool
}

// Store is the read side of the storage adapter used for hydration.
// All errors other than the not found sentinels are wrapped with
// storage.ErrUnavailable.
type Store interface {
	// GetStatus returns a live status.
	// Returns ErrStatusNotFound for absent and soft-deleted statuses.
	GetStatus(ctx context.Context, id string) (*Status, error)

	// GetAccount returns ErrAccountNotFound if absent
	GetAccount(ctx context.Context, id string) (*Account, error)

	// GetMedia returns ErrMediaNotFound if absent
	GetMedia(ctx context.Context, id string) (*Media, error)

	// CountStatuses counts live statuses matching every non-empty filter field
	CountStatuses(ctx context.Context, filter StatusFilter) (int64, error)

	// CountInteractions counts active interactions of one kind
	CountInteractions(ctx context.Context, filter InteractionFilter) (int64, error)

	// CountVotes groups a poll's votes by choice index. Choices that were
	// never voted for are omitted. No range check is applied.
	CountVotes(ctx context.Context, pollID string) ([]VoteCount, error)

	// CountVoters counts distinct accounts that voted in a poll
	CountVoters(ctx context.Context, pollID string) (int64, error)

	// ListAccountVotes returns the choices one account voted for, ascending
	ListAccountVotes(ctx context.Context, pollID, accountID string) ([]int, error)
}

// StatusFilter narrows CountStatuses. Empty fields are unconstrained.
type StatusFilter struct {
	InReplyToID string
	ReblogOfID  string
	AccountID   string
}

// InteractionFilter narrows CountInteractions. Empty AccountID counts every account.
type InteractionFilter struct {
	StatusID  string
	AccountID string
	Kind      interactions.Kind
}

// ViewerStateProvider resolves the viewer's interaction record, creating it
// on first access
type ViewerStateProvider interface {
	GetOrCreate(ctx context.Context, statusID, accountID string) (*interactions.State, error)
}
