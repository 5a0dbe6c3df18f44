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

func (mdb *MongodbRepo) ResolveRoom(ctx context.Context, a, b string) (*DMRoom, error) {
	col, err := mdb.GetCollection(ctx, DMRoomsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	pair := SortedPair(a, b)
	now := time.Now()
	filter := bson.M{"pair_key": PairKey(a, b)}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":          primitive.NewObjectID(),
		"participants": pair,
		"last_message": "",
		"last_updated": now,
		"unread_counts": bson.M{
			pair[0]: 0,
			pair[1]: 0,
		},
		"created_at": now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var room DMRoom
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two concurrent upserts raced on the unique pair_key; the loser re-reads the winner.
		err = col.FindOne(ctx, filter).Decode(&room)
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving dm room: %w", err)
	}
	return &room, nil
}

func (mdb *MongodbRepo) GetRoom(ctx context.Context, id primitive.ObjectID) (*DMRoom, error) {
	col, err := mdb.GetCollection(ctx, DMRoomsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var room DMRoom
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("error finding dm room: %w", err)
	}
	return &room, nil
}

func (mdb *MongodbRepo) ListRooms(ctx context.Context, userID string) ([]*DMRoom, error) {
	col, err := mdb.GetCollection(ctx, DMRoomsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding dm rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*DMRoom{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("error decoding dm rooms: %w", err)
	}
	return rooms, nil
}

func (mdb *MongodbRepo) AppendMessage(ctx context.Context, room *DMRoom, msg *DMMessage) error {
	recipient := room.Counterpart(msg.SenderID)
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		messages, err := mdb.GetCollection(sc, DMMessagesColName)
		if err != nil {
			return err
		}
		if _, err := messages.InsertOne(sc, msg); err != nil {
			return fmt.Errorf("failed to insert dm message: %w", err)
		}

		rooms, err := mdb.GetCollection(sc, DMRoomsColName)
		if err != nil {
			return err
		}
		update := bson.M{
			"$set": bson.M{
				"last_message":   msg.Text,
				"last_sender_id": msg.SenderID,
				"last_updated":   msg.CreatedAt,
			},
			"$inc": bson.M{"unread_counts." + recipient: 1},
		}
		res, err := rooms.UpdateOne(sc, bson.M{"_id": room.ID}, update)
		if err != nil {
			return fmt.Errorf("error updating dm room: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}

func (mdb *MongodbRepo) ListMessages(ctx context.Context, roomID primitive.ObjectID, page HistoryPage) ([]*DMMessage, error) {
	col, err := mdb.GetCollection(ctx, DMMessagesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	messages, err := findHistory[DMMessage](ctx, col, bson.M{"room_id": roomID}, page)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding dm messages: %w", err)
	}
	return messages, nil
}

func (mdb *MongodbRepo) MarkRoomRead(ctx context.Context, room *DMRoom, readerID string) (int64, error) {
	var marked int64
	err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		messages, err := mdb.GetCollection(sc, DMMessagesColName)
		if err != nil {
			return err
		}
		res, err := messages.UpdateMany(sc,
			bson.M{"room_id": room.ID, "sender_id": room.Counterpart(readerID), "is_read": false},
			bson.M{"$set": bson.M{"is_read": true}},
		)
		if err != nil {
			return fmt.Errorf("error marking dm messages read: %w", err)
		}
		marked = res.ModifiedCount

		rooms, err := mdb.GetCollection(sc, DMRoomsColName)
		if err != nil {
			return err
		}
		if _, err := rooms.UpdateOne(sc,
			bson.M{"_id": room.ID},
			bson.M{"$set": bson.M{"unread_counts." + readerID: 0}},
		); err != nil {
			return fmt.Errorf("error resetting unread counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}
