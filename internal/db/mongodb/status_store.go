package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
	"Murmur/internal/core/storage"
)

type mongoStatusStore struct {
	statuses      *mongo.Collection
	accounts      *mongo.Collection
	media         *mongo.Collection
	statusAccount *mongo.Collection
	pollVotes     *mongo.Collection
}

// NewStatusStore creates a new MongoDB status store
func NewStatusStore(db *mongo.Database) statuses.Store {
	return &mongoStatusStore{
		statuses:      db.Collection(statusesCollection),
		accounts:      db.Collection(accountsCollection),
		media:         db.Collection(mediaCollection),
		statusAccount: db.Collection(statusAccountCollection),
		pollVotes:     db.Collection(pollVotesCollection),
	}
}

// GetStatus retrieves a live status
func (s *mongoStatusStore) GetStatus(ctx context.Context, id string) (*statuses.Status, error) {
	var doc StatusDocument
	err := s.statuses.FindOne(ctx, bson.M{"_id": id, "deleted": notDeleted}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, statuses.ErrStatusNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get status", err)
	}
	return doc.toStatus(), nil
}

// GetAccount retrieves an account by id
func (s *mongoStatusStore) GetAccount(ctx context.Context, id string) (*statuses.Account, error) {
	var doc AccountDocument
	err := s.accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, statuses.ErrAccountNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get account", err)
	}
	return doc.toAccount(), nil
}

// GetMedia retrieves a media attachment by id
func (s *mongoStatusStore) GetMedia(ctx context.Context, id string) (*statuses.Media, error) {
	var doc MediaDocument
	err := s.media.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, statuses.ErrMediaNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get media", err)
	}
	return doc.toMedia(), nil
}

// CountStatuses counts live statuses matching the filter
func (s *mongoStatusStore) CountStatuses(ctx context.Context, filter statuses.StatusFilter) (int64, error) {
	query := bson.M{"deleted": notDeleted}
	if filter.InReplyToID != "" {
		query["in_reply_to_id"] = filter.InReplyToID
	}
	if filter.ReblogOfID != "" {
		query["reblog_of_id"] = filter.ReblogOfID
	}
	if filter.AccountID != "" {
		query["account_id"] = filter.AccountID
	}

	n, err := s.statuses.CountDocuments(ctx, query)
	if err != nil {
		return 0, storage.Unavailable("count statuses", err)
	}
	return n, nil
}

// CountInteractions counts live interaction records with the kind's flag set
func (s *mongoStatusStore) CountInteractions(ctx context.Context, filter statuses.InteractionFilter) (int64, error) {
	field, err := flagField(filter.Kind)
	if err != nil {
		return 0, err
	}

	query := bson.M{
		"status_id": filter.StatusID,
		field:       true,
		"deleted":   notDeleted,
	}
	if filter.AccountID != "" {
		query["account_id"] = filter.AccountID
	}

	n, err := s.statusAccount.CountDocuments(ctx, query)
	if err != nil {
		return 0, storage.Unavailable("count "+string(filter.Kind), err)
	}
	return n, nil
}

// CountVotes groups a poll's votes by choice
func (s *mongoStatusStore) CountVotes(ctx context.Context, pollID string) ([]statuses.VoteCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"poll_id": pollID}}},
		{{Key: "$group", Value: bson.M{"_id": "$choice", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.pollVotes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storage.Unavailable("count poll votes", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var rows []struct {
		Choice int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storage.Unavailable("count poll votes", err)
	}

	counts := make([]statuses.VoteCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, statuses.VoteCount{Choice: row.Choice, Count: row.Count})
	}
	return counts, nil
}

// CountVoters counts distinct voting accounts
func (s *mongoStatusStore) CountVoters(ctx context.Context, pollID string) (int64, error) {
	voters, err := s.pollVotes.Distinct(ctx, "account_id", bson.M{"poll_id": pollID})
	if err != nil {
		return 0, storage.Unavailable("count poll voters", err)
	}
	return int64(len(voters)), nil
}

// ListAccountVotes lists one account's choices in a poll
func (s *mongoStatusStore) ListAccountVotes(ctx context.Context, pollID, accountID string) ([]int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "choice", Value: 1}}).
		SetProjection(bson.M{"choice": 1})

	cursor, err := s.pollVotes.Find(ctx, bson.M{"poll_id": pollID, "account_id": accountID}, opts)
	if err != nil {
		return nil, storage.Unavailable("list account votes", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var votes []PollVoteDocument
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, storage.Unavailable("list account votes", err)
	}

	if len(votes) == 0 {
		return nil, nil
	}
	choices := make([]int, 0, len(votes))
	for _, v := range votes {
		choices = append(choices, v.Choice)
	}
	return choices, nil
}

func flagField(kind interactions.Kind) (string, error) {
	field, ok := flagFields[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", interactions.ErrInvalidKind, kind)
	}
	return field, nil
}
