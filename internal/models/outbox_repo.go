package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateOutbox(ctx context.Context, o *Outbox) error {
	col, err := mdb.GetCollection(ctx, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert outbox entry: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ClaimDueOutbox(ctx context.Context, now, leaseUntil time.Time) (*Outbox, error) {
	col, err := mdb.GetCollection(ctx, OutboxColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{
		"status":          OutboxPending,
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"next_attempt_at": leaseUntil}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)

	var entry Outbox
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error claiming outbox entry: %w", err)
	}
	return &entry, nil
}

func (mdb *MongodbRepo) MarkOutboxDelivered(ctx context.Context, id primitive.ObjectID, recipient string) error {
	col, err := mdb.GetCollection(ctx, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"delivered": recipient}})
	if err != nil {
		return fmt.Errorf("error marking outbox delivery: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOutboxNotFound
	}
	return nil
}

func (mdb *MongodbRepo) RescheduleOutbox(ctx context.Context, id primitive.ObjectID, attempts int, next time.Time, lastErr string) error {
	col, err := mdb.GetCollection(ctx, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	update := bson.M{"$set": bson.M{
		"attempts":        attempts,
		"next_attempt_at": next,
		"last_error":      lastErr,
	}}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("error rescheduling outbox entry: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) FinishOutbox(ctx context.Context, id primitive.ObjectID, status OutboxStatus, lastErr string) error {
	col, err := mdb.GetCollection(ctx, OutboxColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	update := bson.M{"$set": bson.M{
		"status":       status,
		"completed_at": time.Now(),
		"last_error":   lastErr,
	}}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("error finishing outbox entry: %w", err)
	}
	return nil
}
