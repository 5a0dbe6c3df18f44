package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateTry(ctx context.Context, try *Try) (*Try, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, try); err != nil {
		return nil, fmt.Errorf("failed to insert try: %w", err)
	}
	return try, nil
}

func (mdb *MongodbRepo) GetTry(ctx context.Context, id primitive.ObjectID) (*Try, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var try Try
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&try); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTryNotFound
		}
		return nil, fmt.Errorf("error finding try: %w", err)
	}
	return &try, nil
}

func buildTryQuery(filter TryFilter) bson.M {
	query := bson.M{}
	if filter.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Location != "" {
		query["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Location), Options: "i"}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	// ISO date strings compare lexicographically, so the range applies to the first scheduled date.
	dateRange := bson.M{}
	if filter.StartDate != "" {
		dateRange["$gte"] = filter.StartDate
	}
	if filter.EndDate != "" {
		dateRange["$lte"] = filter.EndDate
	}
	if len(dateRange) > 0 {
		query["dates.0"] = dateRange
	}
	return query
}

func (mdb *MongodbRepo) ListTries(ctx context.Context, filter TryFilter) ([]*Try, int64, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}
	query := buildTryQuery(filter)

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting tries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding tries: %w", err)
	}
	defer cursor.Close(ctx)

	tries := []*Try{}
	for cursor.Next(ctx) {
		var try Try
		if err := cursor.Decode(&try); err != nil {
			return nil, 0, fmt.Errorf("error decoding try: %w", err)
		}
		tries = append(tries, &try)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return tries, total, nil
}

func (mdb *MongodbRepo) UpdateTry(ctx context.Context, id primitive.ObjectID, set bson.M) (*Try, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{"_id": id}
	// Capacity may never drop below the seats already taken.
	if capacity, ok := set["capacity"]; ok {
		filter["participant_count"] = bson.M{"$lte": capacity}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Try
	err = col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, ok := set["capacity"]; ok {
				if _, getErr := mdb.GetTry(ctx, id); getErr == nil {
					return nil, ErrCapacityReached
				}
			}
			return nil, ErrTryNotFound
		}
		return nil, fmt.Errorf("error updating try: %w", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteTry(ctx context.Context, id primitive.ObjectID) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		tries, err := mdb.GetCollection(sc, TriesColName)
		if err != nil {
			return err
		}
		res, err := tries.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("error deleting try: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrTryNotFound
		}
		parts, err := mdb.GetCollection(sc, ParticipationsColName)
		if err != nil {
			return err
		}
		if _, err := parts.DeleteMany(sc, bson.M{"try_id": id}); err != nil {
			return fmt.Errorf("error deleting participations: %w", err)
		}
		return nil
	})
}

// ClaimSeat increments participant_count only while it is below capacity.
func (mdb *MongodbRepo) ClaimSeat(ctx context.Context, id primitive.ObjectID) (*Try, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{
		"_id":    id,
		"status": TryStatusOpen,
		"$expr":  bson.M{"$lt": bson.A{"$participant_count", "$capacity"}},
	}
	update := bson.M{
		"$inc": bson.M{"participant_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var try Try
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&try)
	if err == nil {
		return &try, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error claiming seat: %w", err)
	}
	current, getErr := mdb.GetTry(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status != TryStatusOpen {
		return nil, ErrTryNotOpen
	}
	return nil, ErrCapacityReached
}

func (mdb *MongodbRepo) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{"_id": id, "participant_count": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"participant_count": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error releasing seat: %w", err)
	}
	return nil
}

// CompleteTry records the completion and flips the try to completed in one transaction.
func (mdb *MongodbRepo) CompleteTry(ctx context.Context, completion *Completion) (*Try, error) {
	var completed *Try
	err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		tries, err := mdb.GetCollection(sc, TriesColName)
		if err != nil {
			return err
		}
		if completed, err = markTryCompleted(sc, tries, completion.TryID); err != nil {
			return err
		}

		completions, err := mdb.GetCollection(sc, CompletionsColName)
		if err != nil {
			return err
		}
		if _, err := completions.InsertOne(sc, completion); err != nil {
			return fmt.Errorf("error inserting completion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// markTryCompleted flips an uncompleted try to completed. A miss is resolved
// to ErrTryNotFound or ErrTryAlreadyCompleted by re-reading the try.
func markTryCompleted(ctx context.Context, tries *mongo.Collection, id primitive.ObjectID) (*Try, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "status": bson.M{"$ne": TryStatusCompleted}}
	update := bson.M{"$set": bson.M{
		"status":       TryStatusCompleted,
		"progress":     ProgressComplete,
		"completed_at": now,
		"updated_at":   now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var completed Try
	err := tries.FindOneAndUpdate(ctx, filter, update, opts).Decode(&completed)
	if err == nil {
		return &completed, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error completing try: %w", err)
	}
	if err := tries.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTryNotFound
		}
		return nil, fmt.Errorf("error finding try: %w", err)
	}
	return nil, ErrTryAlreadyCompleted
}

func (mdb *MongodbRepo) CountCompletedByOwner(ctx context.Context, ownerID string) (int64, error) {
	col, err := mdb.GetCollection(ctx, TriesColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	count, err := col.CountDocuments(ctx, bson.M{"owner_id": ownerID, "status": TryStatusCompleted})
	if err != nil {
		return 0, fmt.Errorf("error counting tries: %w", err)
	}
	return count, nil
}
