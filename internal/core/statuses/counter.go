package statuses

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"Murmur/internal/core/interactions"
)

// Counter computes dataset-wide aggregates for a status.
// Every count excludes soft-deleted rows and issues one store query; nested
// reblog hydration repeats them per status.
type Counter struct {
	store Store
}

// NewCounter creates a counter over store
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// Replies counts live statuses replying to statusID
func (c *Counter) Replies(ctx context.Context, statusID string) (int64, error) {
	n, err := c.store.CountStatuses(ctx, StatusFilter{InReplyToID: statusID})
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return n, nil
}

// Reblogs counts live statuses reblogging statusID
func (c *Counter) Reblogs(ctx context.Context, statusID string) (int64, error) {
	n, err := c.store.CountStatuses(ctx, StatusFilter{ReblogOfID: statusID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reblogs: %w", err)
	}
	return n, nil
}

// RebloggedBy reports whether accountID has a live reblog of statusID
func (c *Counter) RebloggedBy(ctx context.Context, statusID, accountID string) (bool, error) {
	n, err := c.store.CountStatuses(ctx, StatusFilter{ReblogOfID: statusID, AccountID: accountID})
	if err != nil {
		return false, fmt.Errorf("failed to check reblog by viewer: %w", err)
	}
	return n > 0, nil
}

// Favourites counts active favourites of statusID across all accounts
func (c *Counter) Favourites(ctx context.Context, statusID string) (int64, error) {
	return c.interactions(ctx, interactions.KindFavourite, statusID)
}

// Bookmarks counts active bookmarks of statusID across all accounts
func (c *Counter) Bookmarks(ctx context.Context, statusID string) (int64, error) {
	return c.interactions(ctx, interactions.KindBookmark, statusID)
}

func (c *Counter) interactions(ctx context.Context, kind interactions.Kind, statusID string) (int64, error) {
	n, err := c.store.CountInteractions(ctx, InteractionFilter{StatusID: statusID, Kind: kind})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}

// PollTally holds per-option vote counts aligned with Poll.Options
type PollTally struct {
	Options     []int64
	VotesCount  int64
	VotersCount int64
}

// PollTally counts votes per option. Votes whose choice falls outside the
// option list are dropped, so VotesCount always equals the sum of Options.
func (c *Counter) PollTally(ctx context.Context, poll *Poll) (*PollTally, error) {
	counts, err := c.store.CountVotes(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count poll votes: %w", err)
	}

	voters, err := c.store.CountVoters(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count poll voters: %w", err)
	}

	tally := make([]int64, len(poll.Options))
	inRange := lo.Filter(counts, func(vc VoteCount, _ int) bool {
		return vc.Choice >= 0 && vc.Choice < len(tally)
	})
	for _, vc := range inRange {
		tally[vc.Choice] += vc.Count
	}

	return &PollTally{
		Options:     tally,
		VotesCount:  lo.Sum(tally),
		VotersCount: voters,
	}, nil
}
