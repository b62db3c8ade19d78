package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Murmur/internal/core/storage"
)

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Insert(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func newTestService(repo Repository, now time.Time) *notificationService {
	svc := NewNotificationService(repo, nil).(*notificationService)
	svc.now = func() time.Time { return now }
	return svc
}

func validRequest() NotifyRequest {
	return NotifyRequest{
		RecipientID:  "10",
		ActorID:      "20",
		ActivityID:   "30",
		ActivityType: "Favourite",
		Kind:         KindFavourite,
	}
}

func TestNotify_DefaultsTimestampToNow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(mockNotificationRepository)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*notifications.Notification")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*Notification).ID = "1"
		}).
		Return(nil)

	svc := newTestService(repo, now)

	n, err := svc.Notify(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "1", n.ID)
	assert.Equal(t, now, n.CreatedAt)
	assert.Equal(t, now, n.UpdatedAt)
	assert.Equal(t, "10", n.RecipientID)
	assert.Equal(t, "20", n.ActorID)
	assert.Equal(t, "30", n.ActivityID)
	assert.Equal(t, "Favourite", n.ActivityType)
	assert.Equal(t, KindFavourite, n.Kind)
	repo.AssertExpectations(t)
}

func TestNotify_UsesSuppliedTimestamp(t *testing.T) {
	supplied := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := new(mockNotificationRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, time.Now())

	req := validRequest()
	req.CreatedAt = &supplied

	n, err := svc.Notify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, supplied, n.CreatedAt)
	assert.Equal(t, supplied, n.UpdatedAt)
}

func TestNotify_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NotifyRequest)
		field  string
	}{
		{"missing recipient", func(r *NotifyRequest) { r.RecipientID = "" }, "RecipientID"},
		{"missing actor", func(r *NotifyRequest) { r.ActorID = "" }, "ActorID"},
		{"missing activity id", func(r *NotifyRequest) { r.ActivityID = "" }, "ActivityID"},
		{"missing activity type", func(r *NotifyRequest) { r.ActivityType = "" }, "ActivityType"},
		{"unknown kind", func(r *NotifyRequest) { r.Kind = "poke" }, "Kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockNotificationRepository)
			svc := newTestService(repo, time.Now())

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Notify(context.Background(), req)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestNotify_StoreUnavailable(t *testing.T) {
	repo := new(mockNotificationRepository)
	repo.On("Insert", mock.Anything, mock.Anything).
		Return(storage.Unavailable("insert notification", errors.New("connection reset")))

	svc := newTestService(repo, time.Now())

	_, err := svc.Notify(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, storage.IsUnavailable(err))
}
