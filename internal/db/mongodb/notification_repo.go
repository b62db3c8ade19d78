package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"Murmur/internal/core/notifications"
	"Murmur/internal/core/storage"
)

type mongoNotificationRepo struct {
	notifications *mongo.Collection
}

// NewNotificationRepository creates a new MongoDB notification repository
func NewNotificationRepository(db *mongo.Database) notifications.Repository {
	return &mongoNotificationRepo{notifications: db.Collection(notificationsCollection)}
}

// Insert appends a notification
func (r *mongoNotificationRepo) Insert(ctx context.Context, n *notifications.Notification) error {
	doc := NotificationDocument{
		ID:            primitive.NewObjectID(),
		AccountID:     n.RecipientID,
		FromAccountID: n.ActorID,
		ActivityID:    n.ActivityID,
		ActivityType:  n.ActivityType,
		Type:          string(n.Kind),
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}

	if _, err := r.notifications.InsertOne(ctx, doc); err != nil {
		return storage.Unavailable("insert notification", err)
	}

	n.ID = doc.ID.Hex()
	return nil
}
