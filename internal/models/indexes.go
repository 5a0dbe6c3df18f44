package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes that back uniqueness and the hot queries.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		TriesColName: {
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("created_at_idx"),
			},
			{
				Keys: bson.D{
					{Key: "owner_id", Value: 1},
					{Key: "status", Value: 1},
				},
				Options: options.Index().SetName("owner_status_idx"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("category_created_idx"),
			},
		},
		ParticipationsColName: {
			// One requested/approved record per user and try.
			{
				Keys: bson.D{
					{Key: "try_id", Value: 1},
					{Key: "user_id", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}).
					SetName("try_user_active_unique"),
			},
			{
				Keys:    bson.D{{Key: "try_id", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("try_status_idx"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("user_id_idx"),
			},
		},
		NotificationsColName: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("user_created_idx"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}},
				Options: options.Index().SetName("user_unread_idx"),
			},
			{
				Keys: bson.D{
					{Key: "outbox_id", Value: 1},
					{Key: "user_id", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"outbox_id": bson.M{"$exists": true}}).
					SetName("outbox_user_unique"),
			},
		},
		OutboxColName: {
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "next_attempt_at", Value: 1}},
				Options: options.Index().SetName("status_next_attempt_idx"),
			},
		},
		DMRoomsColName: {
			{
				Keys:    bson.D{{Key: "pair_key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("pair_key_unique"),
			},
			{
				Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "last_updated", Value: -1}},
				Options: options.Index().SetName("participants_updated_idx"),
			},
		},
		DMMessagesColName: {
			{
				Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("room_history_idx"),
			},
		},
		TryChatsColName: {
			{
				Keys:    bson.D{{Key: "try_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("try_history_idx"),
			},
		},
		CommentsColName: {
			{
				Keys:    bson.D{{Key: "try_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("try_created_idx"),
			},
		},
		ReviewsColName: {
			{
				Keys: bson.D{
					{Key: "try_id", Value: 1},
					{Key: "reviewer_id", Value: 1},
					{Key: "reviewed_user_id", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("try_reviewer_reviewed_unique"),
			},
		},
		UserRatingsColName: {
			{
				Keys: bson.D{
					{Key: "rater_id", Value: 1},
					{Key: "rated_id", Value: 1},
					{Key: "try_id", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("rater_rated_try_unique"),
			},
			{
				Keys:    bson.D{{Key: "rated_id", Value: 1}},
				Options: options.Index().SetName("rated_id_idx"),
			},
		},
	}

	for colName, models := range indexes {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %w", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}
	return nil
}
