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

func (mdb *MongodbRepo) CreateParticipation(ctx context.Context, p *Participation) (*Participation, error) {
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyRequested
		}
		return nil, fmt.Errorf("failed to insert participation: %w", err)
	}
	return p, nil
}

func (mdb *MongodbRepo) GetParticipation(ctx context.Context, id primitive.ObjectID) (*Participation, error) {
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var p Participation
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("error finding participation: %w", err)
	}
	return &p, nil
}

func (mdb *MongodbRepo) FindActiveParticipation(ctx context.Context, tryID primitive.ObjectID, userID string) (*Participation, error) {
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var p Participation
	filter := bson.M{"try_id": tryID, "user_id": userID, "active": true}
	if err := col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("error finding participation: %w", err)
	}
	return &p, nil
}

func (mdb *MongodbRepo) TransitionParticipation(ctx context.Context, id primitive.ObjectID, from, to ParticipationStatus) (*Participation, error) {
	if !CanTransition(from, to) {
		return nil, ErrInvalidTransition
	}
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"active":     to.Active(),
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Participation
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := mdb.GetParticipation(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("error updating participation: %w", err)
	}
	return &p, nil
}

func (mdb *MongodbRepo) DeleteParticipation(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("error deleting participation: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListParticipations(ctx context.Context, tryID primitive.ObjectID, status ParticipationStatus) ([]*Participation, error) {
	return mdb.findParticipations(ctx, participationFilter(tryID, status))
}

func (mdb *MongodbRepo) ListParticipationsByUser(ctx context.Context, userID string) ([]*Participation, error) {
	return mdb.findParticipations(ctx, bson.M{"user_id": userID})
}

func (mdb *MongodbRepo) findParticipations(ctx context.Context, filter bson.M) ([]*Participation, error) {
	col, err := mdb.GetCollection(ctx, ParticipationsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding participations: %w", err)
	}
	defer cursor.Close(ctx)

	list := []*Participation{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding participations: %w", err)
	}
	return list, nil
}
