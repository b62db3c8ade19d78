package interactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Murmur/internal/core/notifications"
	"Murmur/internal/core/storage"
)

type mockInteractionRepository struct {
	mock.Mock
}

func (m *mockInteractionRepository) EnsureInteraction(ctx context.Context, statusID, accountID string) (*State, error) {
	args := m.Called(ctx, statusID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*State), args.Error(1)
}

func (m *mockInteractionRepository) PatchInteraction(ctx context.Context, statusID, accountID string, patch FlagPatch) (*State, error) {
	args := m.Called(ctx, statusID, accountID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*State), args.Error(1)
}

func (m *mockInteractionRepository) UpsertRelation(ctx context.Context, kind Kind, statusID, accountID string, now time.Time) (*Relation, error) {
	args := m.Called(ctx, kind, statusID, accountID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Relation), args.Error(1)
}

func (m *mockInteractionRepository) DeleteRelation(ctx context.Context, kind Kind, statusID, accountID string) (bool, error) {
	args := m.Called(ctx, kind, statusID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *mockInteractionRepository) StatusOwner(ctx context.Context, statusID string) (string, error) {
	args := m.Called(ctx, statusID)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, req notifications.NotifyRequest) (*notifications.Notification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notifications.Notification), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestService(repo Repository, notifier Notifier) *interactionService {
	svc := NewInteractionService(repo, notifier, nil).(*interactionService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetOrCreate(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("EnsureInteraction", mock.Anything, "1", "9").Return(NewState("1", "9"), nil)

	svc := newTestService(repo, nil)

	state, err := svc.GetOrCreate(context.Background(), "1", "9")
	require.NoError(t, err)
	assert.Equal(t, &State{StatusID: "1", AccountID: "9"}, state)
	repo.AssertExpectations(t)
}

func TestGetOrCreate_StoreUnavailable(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("EnsureInteraction", mock.Anything, "1", "9").
		Return(nil, storage.Unavailable("ensure interaction", errors.New("no reachable servers")))

	svc := newTestService(repo, nil)

	_, err := svc.GetOrCreate(context.Background(), "1", "9")
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

func TestSetFlags_EnsuresThenPatches(t *testing.T) {
	repo := new(mockInteractionRepository)
	patch := NewFlagPatch().Favourite(true)

	ensure := repo.On("EnsureInteraction", mock.Anything, "1", "9").Return(NewState("1", "9"), nil)
	repo.On("PatchInteraction", mock.Anything, "1", "9", patch).
		Return(&State{StatusID: "1", AccountID: "9", Favourite: true}, nil).
		NotBefore(ensure)

	svc := newTestService(repo, nil)

	state, err := svc.SetFlags(context.Background(), "1", "9", patch)
	require.NoError(t, err)
	assert.True(t, state.Favourite)
	assert.False(t, state.Bookmark)
	repo.AssertExpectations(t)
}

func TestSetFlags_EmptyPatchSkipsUpdate(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("EnsureInteraction", mock.Anything, "1", "9").
		Return(&State{StatusID: "1", AccountID: "9", Mute: true}, nil)

	svc := newTestService(repo, nil)

	state, err := svc.SetFlags(context.Background(), "1", "9", NewFlagPatch())
	require.NoError(t, err)
	assert.True(t, state.Mute)
	repo.AssertNotCalled(t, "PatchInteraction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFavourite_NewFavouriteNotifiesOwner(t *testing.T) {
	repo := new(mockInteractionRepository)
	notifier := new(mockNotifier)

	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
	repo.On("UpsertRelation", mock.Anything, KindFavourite, "1", "9", fixedNow).Return(&Relation{
		ID:        "55",
		Kind:      KindFavourite,
		StatusID:  "1",
		AccountID: "9",
		Created:   true,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}, nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(req notifications.NotifyRequest) bool {
		return req.RecipientID == "100" &&
			req.ActorID == "9" &&
			req.ActivityID == "55" &&
			req.ActivityType == "Favourite" &&
			req.Kind == notifications.KindFavourite &&
			req.CreatedAt != nil && req.CreatedAt.Equal(fixedNow)
	})).Return(&notifications.Notification{ID: "1"}, nil)

	svc := newTestService(repo, notifier)

	require.NoError(t, svc.Favourite(context.Background(), "1", "9"))
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestFavourite_ExistingFavouriteDoesNotNotify(t *testing.T) {
	repo := new(mockInteractionRepository)
	notifier := new(mockNotifier)

	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
	repo.On("UpsertRelation", mock.Anything, KindFavourite, "1", "9", fixedNow).
		Return(&Relation{ID: "55", Kind: KindFavourite, StatusID: "1", AccountID: "9"}, nil)

	svc := newTestService(repo, notifier)

	require.NoError(t, svc.Favourite(context.Background(), "1", "9"))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestFavourite_OwnStatusDoesNotNotify(t *testing.T) {
	repo := new(mockInteractionRepository)
	notifier := new(mockNotifier)

	repo.On("StatusOwner", mock.Anything, "1").Return("9", nil)
	repo.On("UpsertRelation", mock.Anything, KindFavourite, "1", "9", fixedNow).
		Return(&Relation{ID: "55", Kind: KindFavourite, StatusID: "1", AccountID: "9", Created: true}, nil)

	svc := newTestService(repo, notifier)

	require.NoError(t, svc.Favourite(context.Background(), "1", "9"))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestFavourite_NotifyFailureIsNotFatal(t *testing.T) {
	repo := new(mockInteractionRepository)
	notifier := new(mockNotifier)

	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
	repo.On("UpsertRelation", mock.Anything, KindFavourite, "1", "9", fixedNow).
		Return(&Relation{ID: "55", Kind: KindFavourite, StatusID: "1", AccountID: "9", Created: true}, nil)
	notifier.On("Notify", mock.Anything, mock.Anything).
		Return(nil, storage.Unavailable("insert notification", errors.New("timeout")))

	svc := newTestService(repo, notifier)

	assert.NoError(t, svc.Favourite(context.Background(), "1", "9"))
	notifier.AssertExpectations(t)
}

func TestFavourite_StatusNotFound(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("StatusOwner", mock.Anything, "404").Return("", ErrStatusNotFound)

	svc := newTestService(repo, nil)

	err := svc.Favourite(context.Background(), "404", "9")
	assert.ErrorIs(t, err, ErrStatusNotFound)
	assert.True(t, IsNotFound(err))
	repo.AssertNotCalled(t, "UpsertRelation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnfavourite_Idempotent(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
	repo.On("DeleteRelation", mock.Anything, KindFavourite, "1", "9").Return(false, nil)

	svc := newTestService(repo, nil)

	assert.NoError(t, svc.Unfavourite(context.Background(), "1", "9"))
	repo.AssertExpectations(t)
}

func TestBookmarkAndMute_UseMatchingKind(t *testing.T) {
	tests := []struct {
		call func(Service) error
		name string
		kind Kind
		set  bool
	}{
		{name: "bookmark", kind: KindBookmark, set: true, call: func(s Service) error { return s.Bookmark(context.Background(), "1", "9") }},
		{name: "unbookmark", kind: KindBookmark, call: func(s Service) error { return s.Unbookmark(context.Background(), "1", "9") }},
		{name: "mute", kind: KindMute, set: true, call: func(s Service) error { return s.Mute(context.Background(), "1", "9") }},
		{name: "unmute", kind: KindMute, call: func(s Service) error { return s.Unmute(context.Background(), "1", "9") }},
		{name: "unpin", kind: KindPin, call: func(s Service) error { return s.Unpin(context.Background(), "1", "9") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockInteractionRepository)
			repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
			if tt.set {
				repo.On("UpsertRelation", mock.Anything, tt.kind, "1", "9", fixedNow).
					Return(&Relation{Kind: tt.kind, StatusID: "1", AccountID: "9", Created: true}, nil)
			} else {
				repo.On("DeleteRelation", mock.Anything, tt.kind, "1", "9").Return(true, nil)
			}

			require.NoError(t, tt.call(newTestService(repo, nil)))
			repo.AssertExpectations(t)
		})
	}
}

func TestPin_OnlyOwnStatus(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)

	svc := newTestService(repo, nil)

	err := svc.Pin(context.Background(), "1", "9")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	repo.AssertNotCalled(t, "UpsertRelation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPin_OwnStatus(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("StatusOwner", mock.Anything, "1").Return("9", nil)
	repo.On("UpsertRelation", mock.Anything, KindPin, "1", "9", fixedNow).
		Return(&Relation{Kind: KindPin, StatusID: "1", AccountID: "9", Created: true}, nil)

	svc := newTestService(repo, nil)

	require.NoError(t, svc.Pin(context.Background(), "1", "9"))
	repo.AssertExpectations(t)
}

func TestMutation_StoreUnavailablePropagates(t *testing.T) {
	repo := new(mockInteractionRepository)
	repo.On("StatusOwner", mock.Anything, "1").Return("100", nil)
	repo.On("UpsertRelation", mock.Anything, KindBookmark, "1", "9", fixedNow).
		Return(nil, storage.Unavailable("upsert bookmark", errors.New("broken pipe")))

	svc := newTestService(repo, nil)

	err := svc.Bookmark(context.Background(), "1", "9")
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}
