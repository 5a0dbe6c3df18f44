package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) InsertNotification(ctx context.Context, n *Notification) (bool, error) {
	col, err := mdb.GetCollection(ctx, NotificationsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, n); err != nil {
		// outbox_id+user_id is unique: a duplicate means an earlier attempt already landed.
		if n.OutboxID != nil && mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}
	return true, nil
}

func (mdb *MongodbRepo) ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	col, err := mdb.GetCollection(ctx, NotificationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding notifications: %w", err)
	}
	defer cursor.Close(ctx)

	list := []*Notification{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding notifications: %w", err)
	}
	return list, nil
}

func (mdb *MongodbRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	col, err := mdb.GetCollection(ctx, NotificationsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	count, err := col.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return count, nil
}

func (mdb *MongodbRepo) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	col, err := mdb.GetCollection(ctx, NotificationsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (mdb *MongodbRepo) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	col, err := mdb.GetCollection(ctx, NotificationsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}
