// Package mongodb implements the document store backend. Each (status,
// account) pair owns a single interaction record holding all four flags.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	statusesCollection      = "statuses"
	accountsCollection      = "accounts"
	mediaCollection         = "media"
	statusAccountCollection = "status_accounts"
	pollVotesCollection     = "poll_votes"
	notificationsCollection = "notifications"
)

// Connect opens a client and pings the primary
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique index on
// status_accounts is what makes the interaction upsert race-free.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		statusAccountCollection: {
			{
				Keys:    bson.D{{Key: "status_id", Value: 1}, {Key: "account_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_status_account"),
			},
		},
		statusesCollection: {
			{Keys: bson.D{{Key: "in_reply_to_id", Value: 1}}},
			{Keys: bson.D{{Key: "reblog_of_id", Value: 1}, {Key: "account_id", Value: 1}}},
		},
		pollVotesCollection: {
			{Keys: bson.D{{Key: "poll_id", Value: 1}, {Key: "account_id", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}
	return nil
}

// notDeleted matches documents without a truthy deleted flag
var notDeleted = bson.M{"$ne": true}
