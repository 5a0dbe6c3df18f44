package models

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) error {
	if err := review.ValidateReview(); err != nil {
		return err
	}
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to insert review into database: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListReviewsByTry(ctx context.Context, tryID primitive.ObjectID) ([]*Review, error) {
	return findAll[Review](ctx, mdb, ReviewsColName, bson.M{"try_id": tryID})
}

func (mdb *MongodbRepo) ListReviewsForUser(ctx context.Context, userID string) ([]*Review, error) {
	return findAll[Review](ctx, mdb, ReviewsColName, bson.M{"reviewed_user_id": userID})
}

func (mdb *MongodbRepo) CreateUserRating(ctx context.Context, rating *UserRating) error {
	return mdb.withTransaction(ctx, func(sc mongo.SessionContext) error {
		ratings, err := mdb.GetCollection(sc, UserRatingsColName)
		if err != nil {
			return err
		}
		if _, err := ratings.InsertOne(sc, rating); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrAlreadyRated
			}
			return fmt.Errorf("failed to insert rating: %w", err)
		}

		users, err := mdb.GetCollection(sc, UsersColName)
		if err != nil {
			return err
		}
		update := bson.M{"$inc": bson.M{
			"rating_summary.total_ratings":                          1,
			"rating_summary.rating_sum":                             rating.Rating,
			"rating_summary.buckets." + strconv.Itoa(rating.Rating): 1,
		}}
		if _, err := users.UpdateOne(sc, bson.M{"_id": rating.RatedID}, update); err != nil {
			return fmt.Errorf("error updating rating summary: %w", err)
		}
		return nil
	})
}

func (mdb *MongodbRepo) ListRatingsForUser(ctx context.Context, userID string) ([]*UserRating, error) {
	return findAll[UserRating](ctx, mdb, UserRatingsColName, bson.M{"rated_id": userID})
}

func (mdb *MongodbRepo) ListRatingsByTry(ctx context.Context, tryID primitive.ObjectID) ([]*UserRating, error) {
	return findAll[UserRating](ctx, mdb, UserRatingsColName, bson.M{"try_id": tryID})
}

// findAll returns every document matching filter, newest first.
func findAll[T any](ctx context.Context, mdb *MongodbRepo, colName string, filter bson.M) ([]*T, error) {
	col, err := mdb.GetCollection(ctx, colName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding %s: %w", colName, err)
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", colName, err)
	}
	return out, nil
}
