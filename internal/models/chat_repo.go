package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) InsertChatMessage(ctx context.Context, msg *TryChatMessage) error {
	col, err := mdb.GetCollection(ctx, TryChatsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListChatMessages(ctx context.Context, tryID primitive.ObjectID, page HistoryPage) ([]*TryChatMessage, error) {
	col, err := mdb.GetCollection(ctx, TryChatsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	messages, err := findHistory[TryChatMessage](ctx, col, bson.M{"try_id": tryID}, page)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding chat messages: %w", err)
	}
	return messages, nil
}

func (mdb *MongodbRepo) InsertComment(ctx context.Context, comment *Comment) error {
	col, err := mdb.GetCollection(ctx, CommentsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListComments(ctx context.Context, tryID primitive.ObjectID) ([]*Comment, error) {
	col, err := mdb.GetCollection(ctx, CommentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"try_id": tryID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("error decoding comments: %w", err)
	}
	return comments, nil
}

func (mdb *MongodbRepo) GetComment(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	col, err := mdb.GetCollection(ctx, CommentsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var comment Comment
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("error finding comment: %w", err)
	}
	return &comment, nil
}

func (mdb *MongodbRepo) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, CommentsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}
