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

// HistoryPage selects the newest Limit messages strictly older than the
// message Before. A zero Before selects the latest page.
type HistoryPage struct {
	Before primitive.ObjectID
	Limit  int
}

// historyQuery narrows scope to messages older than the cursor message,
// ordering ties on created_at by _id.
func historyQuery(ctx context.Context, col *mongo.Collection, scope bson.M, before primitive.ObjectID) (bson.M, error) {
	query := bson.M{}
	for k, v := range scope {
		query[k] = v
	}
	if before.IsZero() {
		return query, nil
	}

	anchorFilter := bson.M{"_id": before}
	for k, v := range scope {
		anchorFilter[k] = v
	}
	var anchor struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	opts := options.FindOne().SetProjection(bson.M{"created_at": 1})
	if err := col.FindOne(ctx, anchorFilter, opts).Decode(&anchor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: unknown history cursor %s", ErrInvalidInput, before.Hex())
		}
		return nil, fmt.Errorf("error reading history cursor: %w", err)
	}
	query["$or"] = bson.A{
		bson.M{"created_at": bson.M{"$lt": anchor.CreatedAt}},
		bson.M{"created_at": anchor.CreatedAt, "_id": bson.M{"$lt": before}},
	}
	return query, nil
}

// findHistory returns one page of messages in chronological order.
func findHistory[T any](ctx context.Context, col *mongo.Collection, scope bson.M, page HistoryPage) ([]*T, error) {
	query, err := historyQuery(ctx, col, scope, page.Before)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
