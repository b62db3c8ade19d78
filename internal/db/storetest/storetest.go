// Package storetest holds the behavioural suite every store backend must
// pass. Running it against each backend keeps their observable results
// identical for identical data.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/notifications"
	"Murmur/internal/core/statuses"
)

// Fixtures seeds a backend. Ids are assigned by the backend and returned.
type Fixtures interface {
	AddAccount(t *testing.T, account statuses.Account) string
	AddMedia(t *testing.T, media statuses.Media) string
	// AddStatus stores status, including its poll and media id list
	AddStatus(t *testing.T, status statuses.Status) string
	AddVote(t *testing.T, pollID, accountID string, choice int)
	DeleteStatus(t *testing.T, id string)
}

// Backend bundles the stores under test with their fixtures
type Backend struct {
	Store         statuses.Store
	Interactions  interactions.Repository
	Notifications notifications.Repository
	Fixtures      Fixtures
}

// Run executes the suite. newBackend must return an empty backend.
func Run(t *testing.T, newBackend func(t *testing.T) *Backend) {
	tests := []struct {
		run  func(t *testing.T, b *Backend)
		name string
	}{
		{name: "GetStatusRoundTrip", run: testGetStatusRoundTrip},
		{name: "GetStatusNotFound", run: testGetStatusNotFound},
		{name: "GetAccountAndMedia", run: testGetAccountAndMedia},
		{name: "CountStatuses", run: testCountStatuses},
		{name: "EnsureInteractionDefaults", run: testEnsureInteractionDefaults},
		{name: "EnsureInteractionConcurrent", run: testEnsureInteractionConcurrent},
		{name: "PatchInteraction", run: testPatchInteraction},
		{name: "Relations", run: testRelations},
		{name: "StatusOwner", run: testStatusOwner},
		{name: "InvalidKind", run: testInvalidKind},
		{name: "PollVotes", run: testPollVotes},
		{name: "InsertNotification", run: testInsertNotification},
		{name: "HydrationScenario", run: testHydrationScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, newBackend(t))
		})
	}
}

type seed struct {
	alice, bob, carol string
	root              string
	liveReply         string
	deletedReply      string
}

// seedScenario creates a status with one live and one deleted reply
func seedScenario(t *testing.T, f Fixtures) seed {
	var s seed
	s.alice = f.AddAccount(t, statuses.Account{Username: "alice", Acct: "alice", DisplayName: "Alice"})
	s.bob = f.AddAccount(t, statuses.Account{Username: "bob", Acct: "bob@remote.example"})
	s.carol = f.AddAccount(t, statuses.Account{Username: "carol", Acct: "carol"})

	s.root = f.AddStatus(t, statuses.Status{
		AccountID:  s.alice,
		Text:       "hello",
		Content:    "<p>hello</p>",
		Visibility: statuses.VisibilityPublic,
	})
	s.liveReply = f.AddStatus(t, statuses.Status{
		AccountID:          s.bob,
		InReplyToID:        lo.ToPtr(s.root),
		InReplyToAccountID: lo.ToPtr(s.alice),
		Visibility:         statuses.VisibilityPublic,
	})
	s.deletedReply = f.AddStatus(t, statuses.Status{
		AccountID:   s.carol,
		InReplyToID: lo.ToPtr(s.root),
		Visibility:  statuses.VisibilityPublic,
	})
	f.DeleteStatus(t, s.deletedReply)
	return s
}

func testGetStatusRoundTrip(t *testing.T, b *Backend) {
	ctx := context.Background()
	f := b.Fixtures

	alice := f.AddAccount(t, statuses.Account{Username: "alice", Acct: "alice"})
	m1 := f.AddMedia(t, statuses.Media{Type: statuses.MediaTypeImage, RemoteURL: "https://cdn.example/1.png", Description: lo.ToPtr("first")})
	m2 := f.AddMedia(t, statuses.Media{Type: statuses.MediaTypeVideo, RemoteURL: "https://cdn.example/2.mp4"})

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	id := f.AddStatus(t, statuses.Status{
		AccountID:   alice,
		Text:        "poll time",
		Content:     "<p>poll time</p>",
		SpoilerText: "cw",
		Sensitive:   true,
		Visibility:  statuses.VisibilityUnlisted,
		Language:    lo.ToPtr("en"),
		URI:         lo.ToPtr("https://remote.example/statuses/1"),
		MediaIDs:    []string{m2, m1},
		Poll:        &statuses.Poll{Options: []string{"yes", "no"}, Multiple: true, ExpiresAt: &expires},
	})

	status, err := b.Store.GetStatus(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, status.ID)
	assert.Equal(t, alice, status.AccountID)
	assert.Equal(t, "poll time", status.Text)
	assert.Equal(t, "<p>poll time</p>", status.Content)
	assert.Equal(t, "cw", status.SpoilerText)
	assert.True(t, status.Sensitive)
	assert.Equal(t, statuses.VisibilityUnlisted, status.Visibility)
	require.NotNil(t, status.Language)
	assert.Equal(t, "en", *status.Language)
	require.NotNil(t, status.URI)
	assert.Equal(t, "https://remote.example/statuses/1", *status.URI)
	assert.Nil(t, status.URL)
	assert.Nil(t, status.ReblogOfID)
	assert.Nil(t, status.InReplyToID)
	assert.Equal(t, []string{m2, m1}, status.MediaIDs, "media order is preserved")

	require.NotNil(t, status.Poll)
	assert.NotEmpty(t, status.Poll.ID)
	assert.Equal(t, []string{"yes", "no"}, status.Poll.Options)
	assert.True(t, status.Poll.Multiple)
	require.NotNil(t, status.Poll.ExpiresAt)
	assert.True(t, expires.Equal(*status.Poll.ExpiresAt))
}

func testGetStatusNotFound(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	_, err := b.Store.GetStatus(ctx, s.deletedReply)
	assert.ErrorIs(t, err, statuses.ErrStatusNotFound, "soft-deleted statuses are absent")

	_, err = b.Store.GetStatus(ctx, "999999999")
	assert.ErrorIs(t, err, statuses.ErrStatusNotFound)

	_, err = b.Store.GetStatus(ctx, "not-an-id")
	assert.ErrorIs(t, err, statuses.ErrStatusNotFound)
}

func testGetAccountAndMedia(t *testing.T, b *Backend) {
	ctx := context.Background()
	f := b.Fixtures

	id := f.AddAccount(t, statuses.Account{
		Username:    "alice",
		Acct:        "alice",
		DisplayName: "Alice",
		Note:        "hi",
		URL:         "https://murmur.example/@alice",
		Fields:      []statuses.Field{{Name: "site", Value: "https://alice.example"}},
	})

	account, err := b.Store.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "Alice", account.DisplayName)
	assert.Equal(t, "hi", account.Note)
	assert.Equal(t, "https://murmur.example/@alice", account.URL)
	assert.Equal(t, []statuses.Field{{Name: "site", Value: "https://alice.example"}}, account.Fields)

	_, err = b.Store.GetAccount(ctx, "999999999")
	assert.ErrorIs(t, err, statuses.ErrAccountNotFound)

	mediaID := f.AddMedia(t, statuses.Media{
		Type:      statuses.MediaTypeGifv,
		RemoteURL: "https://cdn.example/a.mp4",
		Blurhash:  lo.ToPtr("LEHV6nWB2yk8pyo0adR*.7kCMdnj"),
	})

	media, err := b.Store.GetMedia(ctx, mediaID)
	require.NoError(t, err)
	assert.Equal(t, mediaID, media.ID)
	assert.Equal(t, statuses.MediaTypeGifv, media.Type)
	assert.Equal(t, "https://cdn.example/a.mp4", media.RemoteURL)
	assert.Nil(t, media.Description)
	require.NotNil(t, media.Blurhash)
	assert.Equal(t, "LEHV6nWB2yk8pyo0adR*.7kCMdnj", *media.Blurhash)

	_, err = b.Store.GetMedia(ctx, "999999999")
	assert.ErrorIs(t, err, statuses.ErrMediaNotFound)
}

func testCountStatuses(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	replies, err := b.Store.CountStatuses(ctx, statuses.StatusFilter{InReplyToID: s.root})
	require.NoError(t, err)
	assert.Equal(t, int64(1), replies)

	b.Fixtures.AddStatus(t, statuses.Status{AccountID: s.bob, ReblogOfID: lo.ToPtr(s.root), Visibility: statuses.VisibilityPublic})
	deletedReblog := b.Fixtures.AddStatus(t, statuses.Status{AccountID: s.carol, ReblogOfID: lo.ToPtr(s.root), Visibility: statuses.VisibilityPublic})
	b.Fixtures.DeleteStatus(t, deletedReblog)

	reblogs, err := b.Store.CountStatuses(ctx, statuses.StatusFilter{ReblogOfID: s.root})
	require.NoError(t, err)
	assert.Equal(t, int64(1), reblogs)

	byBob, err := b.Store.CountStatuses(ctx, statuses.StatusFilter{ReblogOfID: s.root, AccountID: s.bob})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byBob)

	byCarol, err := b.Store.CountStatuses(ctx, statuses.StatusFilter{ReblogOfID: s.root, AccountID: s.carol})
	require.NoError(t, err)
	assert.Equal(t, int64(0), byCarol)
}

func testEnsureInteractionDefaults(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	state, err := b.Interactions.EnsureInteraction(ctx, s.root, s.bob)
	require.NoError(t, err)
	assert.Equal(t, &interactions.State{StatusID: s.root, AccountID: s.bob}, state)

	again, err := b.Interactions.EnsureInteraction(ctx, s.root, s.bob)
	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func testEnsureInteractionConcurrent(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Interactions.EnsureInteraction(ctx, s.root, s.carol)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	_, err := b.Interactions.PatchInteraction(ctx, s.root, s.carol, interactions.NewFlagPatch().Favourite(true))
	require.NoError(t, err)

	n, err := b.Store.CountInteractions(ctx, statuses.InteractionFilter{StatusID: s.root, Kind: interactions.KindFavourite})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "concurrent ensures must leave a single record")
}

func testPatchInteraction(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	_, err := b.Interactions.EnsureInteraction(ctx, s.root, s.bob)
	require.NoError(t, err)

	state, err := b.Interactions.PatchInteraction(ctx, s.root, s.bob,
		interactions.NewFlagPatch().Favourite(true).Mute(true))
	require.NoError(t, err)
	assert.True(t, state.Favourite)
	assert.True(t, state.Mute)
	assert.False(t, state.Bookmark)
	assert.False(t, state.Pin)

	state, err = b.Interactions.PatchInteraction(ctx, s.root, s.bob,
		interactions.NewFlagPatch().Bookmark(true).Mute(false))
	require.NoError(t, err)
	assert.True(t, state.Favourite, "unsupplied flags keep their value")
	assert.True(t, state.Bookmark)
	assert.False(t, state.Mute)

	reread, err := b.Interactions.EnsureInteraction(ctx, s.root, s.bob)
	require.NoError(t, err)
	assert.Equal(t, state, reread)
}

func testRelations(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)
	now := time.Now().UTC().Truncate(time.Millisecond)

	count := func(kind interactions.Kind) int64 {
		n, err := b.Store.CountInteractions(ctx, statuses.InteractionFilter{StatusID: s.root, Kind: kind})
		require.NoError(t, err)
		return n
	}

	rel, err := b.Interactions.UpsertRelation(ctx, interactions.KindFavourite, s.root, s.bob, now)
	require.NoError(t, err)
	assert.True(t, rel.Created)
	assert.NotEmpty(t, rel.ID)
	assert.Equal(t, int64(1), count(interactions.KindFavourite))

	rel, err = b.Interactions.UpsertRelation(ctx, interactions.KindFavourite, s.root, s.bob, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, rel.Created, "repeat favourite is a touch")
	assert.Equal(t, int64(1), count(interactions.KindFavourite))

	_, err = b.Interactions.UpsertRelation(ctx, interactions.KindFavourite, s.root, s.carol, now)
	require.NoError(t, err)
	_, err = b.Interactions.UpsertRelation(ctx, interactions.KindBookmark, s.root, s.carol, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count(interactions.KindFavourite))
	assert.Equal(t, int64(1), count(interactions.KindBookmark))

	byBob, err := b.Store.CountInteractions(ctx, statuses.InteractionFilter{StatusID: s.root, AccountID: s.bob, Kind: interactions.KindFavourite})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byBob)

	state, err := b.Interactions.EnsureInteraction(ctx, s.root, s.carol)
	require.NoError(t, err)
	assert.True(t, state.Favourite)
	assert.True(t, state.Bookmark)

	deleted, err := b.Interactions.DeleteRelation(ctx, interactions.KindFavourite, s.root, s.bob)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(1), count(interactions.KindFavourite))

	deleted, err = b.Interactions.DeleteRelation(ctx, interactions.KindFavourite, s.root, s.bob)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")
	assert.Equal(t, int64(1), count(interactions.KindFavourite))

	state, err = b.Interactions.EnsureInteraction(ctx, s.root, s.bob)
	require.NoError(t, err)
	assert.False(t, state.Favourite)
}

func testStatusOwner(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	owner, err := b.Interactions.StatusOwner(ctx, s.root)
	require.NoError(t, err)
	assert.Equal(t, s.alice, owner)

	_, err = b.Interactions.StatusOwner(ctx, s.deletedReply)
	assert.ErrorIs(t, err, interactions.ErrStatusNotFound)

	_, err = b.Interactions.StatusOwner(ctx, "999999999")
	assert.ErrorIs(t, err, interactions.ErrStatusNotFound)
}

func testInvalidKind(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	_, err := b.Interactions.UpsertRelation(ctx, interactions.Kind("reblog"), s.root, s.bob, time.Now())
	assert.ErrorIs(t, err, interactions.ErrInvalidKind)

	_, err = b.Store.CountInteractions(ctx, statuses.InteractionFilter{StatusID: s.root, Kind: "reblog"})
	assert.ErrorIs(t, err, interactions.ErrInvalidKind)
}

func testPollVotes(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	id := b.Fixtures.AddStatus(t, statuses.Status{
		AccountID:  s.alice,
		Visibility: statuses.VisibilityPublic,
		Poll:       &statuses.Poll{Options: []string{"a", "b", "c"}, Multiple: true},
	})
	status, err := b.Store.GetStatus(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, status.Poll)
	pollID := status.Poll.ID

	b.Fixtures.AddVote(t, pollID, s.bob, 0)
	b.Fixtures.AddVote(t, pollID, s.bob, 2)
	b.Fixtures.AddVote(t, pollID, s.carol, 0)
	b.Fixtures.AddVote(t, pollID, s.carol, 5)

	counts, err := b.Store.CountVotes(ctx, pollID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []statuses.VoteCount{
		{Choice: 0, Count: 2},
		{Choice: 2, Count: 1},
		{Choice: 5, Count: 1},
	}, counts)

	voters, err := b.Store.CountVoters(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), voters)

	own, err := b.Store.ListAccountVotes(ctx, pollID, s.bob)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, own)

	none, err := b.Store.ListAccountVotes(ctx, pollID, s.alice)
	require.NoError(t, err)
	assert.Empty(t, none)

	tally, err := statuses.NewCounter(b.Store).PollTally(ctx, status.Poll)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0, 1}, tally.Options)
	assert.Equal(t, int64(3), tally.VotesCount)
}

func testInsertNotification(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)
	now := time.Now().UTC().Truncate(time.Millisecond)

	n := &notifications.Notification{
		RecipientID:  s.alice,
		ActorID:      s.bob,
		ActivityID:   "1",
		ActivityType: "Favourite",
		Kind:         notifications.KindFavourite,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, b.Notifications.Insert(ctx, n))
	assert.NotEmpty(t, n.ID)

	second := *n
	second.ID = ""
	require.NoError(t, b.Notifications.Insert(ctx, &second))
	assert.NotEqual(t, n.ID, second.ID, "notifications are append-only")
}

// testHydrationScenario drives the full hydrator and interaction service
// over the backend
func testHydrationScenario(t *testing.T, b *Backend) {
	ctx := context.Background()
	s := seedScenario(t, b.Fixtures)

	urls, err := statuses.NewURLBuilder("https://murmur.example/")
	require.NoError(t, err)

	notifier := notifications.NewNotificationService(b.Notifications, nil)
	interactionSvc := interactions.NewInteractionService(b.Interactions, notifier, nil)
	hydrator := statuses.NewStatusService(b.Store, interactionSvc, urls, nil)

	view, err := hydrator.Hydrate(ctx, statuses.HydrateRequest{StatusID: s.root, FailOnMissing: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.RepliesCount)
	assert.Equal(t, "https://murmur.example/statuses/"+s.root, view.URI)
	assert.Nil(t, view.Favourited)

	require.NoError(t, interactionSvc.Favourite(ctx, s.root, s.bob))

	view, err = hydrator.Hydrate(ctx, statuses.HydrateRequest{StatusID: s.root, ViewerID: s.bob, FailOnMissing: true})
	require.NoError(t, err)
	require.NotNil(t, view.Favourited)
	assert.True(t, *view.Favourited)
	assert.GreaterOrEqual(t, view.FavouritesCount, int64(1))
	assert.False(t, *view.Bookmarked)

	require.NoError(t, interactionSvc.Unfavourite(ctx, s.root, s.bob))

	view, err = hydrator.Hydrate(ctx, statuses.HydrateRequest{StatusID: s.root, ViewerID: s.bob, FailOnMissing: true})
	require.NoError(t, err)
	assert.False(t, *view.Favourited)
	assert.Equal(t, int64(0), view.FavouritesCount)

	reblog := b.Fixtures.AddStatus(t, statuses.Status{AccountID: s.bob, ReblogOfID: lo.ToPtr(s.deletedReply), Visibility: statuses.VisibilityPublic})
	view, err = hydrator.Hydrate(ctx, statuses.HydrateRequest{StatusID: reblog, FailOnMissing: true})
	require.NoError(t, err)
	require.NotNil(t, view.Reblog)
	assert.True(t, view.Reblog.IsStub())
	assert.Equal(t, s.deletedReply, view.Reblog.ID)

	_, err = hydrator.Hydrate(ctx, statuses.HydrateRequest{StatusID: s.deletedReply, FailOnMissing: true})
	assert.ErrorIs(t, err, statuses.ErrStatusNotFound)
}
