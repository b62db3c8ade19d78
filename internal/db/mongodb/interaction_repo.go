package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/storage"
)

type mongoInteractionRepo struct {
	statuses      *mongo.Collection
	statusAccount *mongo.Collection
	now           func() time.Time
}

// NewInteractionRepository creates a new MongoDB interaction repository
func NewInteractionRepository(db *mongo.Database) interactions.Repository {
	return &mongoInteractionRepo{
		statuses:      db.Collection(statusesCollection),
		statusAccount: db.Collection(statusAccountCollection),
		now:           time.Now,
	}
}

func pairFilter(statusID, accountID string) bson.M {
	return bson.M{"status_id": statusID, "account_id": accountID}
}

func defaultFlags() bson.M {
	return bson.M{
		"favourite": false,
		"bookmark":  false,
		"pin":       false,
		"mute":      false,
		"deleted":   false,
	}
}

// EnsureInteraction upserts the default record. Two concurrent upserts can
// both miss and race on the unique index; the loser retries once and finds
// the winner's record.
func (r *mongoInteractionRepo) EnsureInteraction(ctx context.Context, statusID, accountID string) (*interactions.State, error) {
	doc, err := r.ensure(ctx, statusID, accountID)
	if mongo.IsDuplicateKeyError(err) {
		doc, err = r.ensure(ctx, statusID, accountID)
	}
	if err != nil {
		return nil, storage.Unavailable("ensure interaction", err)
	}

	if doc.Deleted {
		doc, err = r.resurrect(ctx, statusID, accountID)
		if err != nil {
			return nil, err
		}
	}

	return doc.toState(), nil
}

func (r *mongoInteractionRepo) ensure(ctx context.Context, statusID, accountID string) (*StatusAccountDocument, error) {
	now := r.now().UTC()
	insert := defaultFlags()
	insert["created_at"] = now
	insert["updated_at"] = now

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc StatusAccountDocument
	err := r.statusAccount.FindOneAndUpdate(ctx,
		pairFilter(statusID, accountID),
		bson.M{"$setOnInsert": insert},
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// resurrect resets a soft-deleted record to default flags
func (r *mongoInteractionRepo) resurrect(ctx context.Context, statusID, accountID string) (*StatusAccountDocument, error) {
	reset := defaultFlags()
	reset["updated_at"] = r.now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	filter := pairFilter(statusID, accountID)
	filter["deleted"] = true

	var doc StatusAccountDocument
	err := r.statusAccount.FindOneAndUpdate(ctx, filter, bson.M{"$set": reset}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// resurrected concurrently; read the live record
		err = r.statusAccount.FindOne(ctx, pairFilter(statusID, accountID)).Decode(&doc)
	}
	if err != nil {
		return nil, storage.Unavailable("resurrect interaction", err)
	}
	return &doc, nil
}

// PatchInteraction sets only the supplied flags with a single $set
func (r *mongoInteractionRepo) PatchInteraction(ctx context.Context, statusID, accountID string, patch interactions.FlagPatch) (*interactions.State, error) {
	set := bson.M{"updated_at": r.now().UTC()}
	for kind, value := range patch.Fields() {
		field, err := flagField(kind)
		if err != nil {
			return nil, err
		}
		set[field] = value
	}

	filter := pairFilter(statusID, accountID)
	filter["deleted"] = notDeleted

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc StatusAccountDocument
	err := r.statusAccount.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// no live record yet; create it and apply the patch once more
		if _, err := r.EnsureInteraction(ctx, statusID, accountID); err != nil {
			return nil, err
		}
		err = r.statusAccount.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	}
	if err != nil {
		return nil, storage.Unavailable("patch interaction", err)
	}

	return doc.toState(), nil
}

// UpsertRelation sets the kind's flag. The conditional update only matches
// when the flag was false, which is how a new relation is told apart from a
// repeated one.
func (r *mongoInteractionRepo) UpsertRelation(ctx context.Context, kind interactions.Kind, statusID, accountID string, now time.Time) (*interactions.Relation, error) {
	field, err := flagField(kind)
	if err != nil {
		return nil, err
	}

	if _, err := r.EnsureInteraction(ctx, statusID, accountID); err != nil {
		return nil, err
	}

	rel := &interactions.Relation{
		Kind:      kind,
		StatusID:  statusID,
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	filter := pairFilter(statusID, accountID)
	filter["deleted"] = notDeleted
	filter[field] = bson.M{"$ne": true}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc StatusAccountDocument
	err = r.statusAccount.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{field: true, "updated_at": now}}, opts,
	).Decode(&doc)
	if err == nil {
		rel.ID = doc.ID.Hex()
		rel.Created = true
		return rel, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.Unavailable("upsert "+string(kind), err)
	}

	// already set; touch it
	err = r.statusAccount.FindOneAndUpdate(ctx, pairFilter(statusID, accountID),
		bson.M{"$set": bson.M{"updated_at": now}}, opts,
	).Decode(&doc)
	if err != nil {
		return nil, storage.Unavailable("touch "+string(kind), err)
	}
	rel.ID = doc.ID.Hex()
	return rel, nil
}

// DeleteRelation clears the kind's flag
func (r *mongoInteractionRepo) DeleteRelation(ctx context.Context, kind interactions.Kind, statusID, accountID string) (bool, error) {
	field, err := flagField(kind)
	if err != nil {
		return false, err
	}

	filter := pairFilter(statusID, accountID)
	filter["deleted"] = notDeleted
	filter[field] = true

	result, err := r.statusAccount.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{field: false, "updated_at": r.now().UTC()}},
	)
	if err != nil {
		return false, storage.Unavailable("delete "+string(kind), err)
	}

	return result.ModifiedCount > 0, nil
}

// StatusOwner returns the author of a live status
func (r *mongoInteractionRepo) StatusOwner(ctx context.Context, statusID string) (string, error) {
	opts := options.FindOne().SetProjection(bson.M{"account_id": 1})

	var doc StatusDocument
	err := r.statuses.FindOne(ctx, bson.M{"_id": statusID, "deleted": notDeleted}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", interactions.ErrStatusNotFound
	}
	if err != nil {
		return "", storage.Unavailable("get status owner", err)
	}
	return doc.AccountID, nil
}
