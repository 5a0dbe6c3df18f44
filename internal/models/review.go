package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompletionStatus string

const (
	CompletionCompleted          CompletionStatus = "completed"
	CompletionPartiallyCompleted CompletionStatus = "partially_completed"
	CompletionNotCompleted       CompletionStatus = "not_completed"
)

type Completion struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TryID            primitive.ObjectID `bson:"try_id" json:"try_id"`
	OrganizerID      string             `bson:"organizer_id" json:"organizer_id"`
	CompletionStatus CompletionStatus   `bson:"completion_status" json:"completion_status" validate:"required,oneof=completed partially_completed not_completed"`
	Comment          string             `bson:"comment" json:"comment" validate:"max=1000"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}

func (c *Completion) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now()
	c.Comment = strings.TrimSpace(c.Comment)
	return nil
}

type Review struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TryID          primitive.ObjectID `bson:"try_id" json:"try_id"`
	ReviewerID     string             `bson:"reviewer_id" json:"reviewer_id" validate:"required"`
	ReviewedUserID string             `bson:"reviewed_user_id" json:"reviewed_user_id" validate:"required"`
	Rating         int                `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Comment        string             `bson:"comment" json:"comment" validate:"max=1000"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

func (r *Review) BeforeCreate() error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}

func (r Review) ValidateReview() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if r.ReviewerID == r.ReviewedUserID {
		return ErrSelfAction
	}
	return nil
}

type UserRating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RaterID   string             `bson:"rater_id" json:"rater_id" validate:"required"`
	RatedID   string             `bson:"rated_id" json:"rated_id" validate:"required"`
	TryID     primitive.ObjectID `bson:"try_id" json:"try_id"`
	Rating    int                `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Comment   string             `bson:"comment" json:"comment" validate:"max=1000"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

func (r *UserRating) BeforeCreate() error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}

// RatingSummary is kept on the user document and only ever changed with $inc.
type RatingSummary struct {
	TotalRatings int            `bson:"total_ratings" json:"totalRatings"`
	RatingSum    int            `bson:"rating_sum" json:"-"`
	Buckets      map[string]int `bson:"buckets" json:"ratings"`
}

func (s RatingSummary) AverageRating() float64 {
	if s.TotalRatings == 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.TotalRatings)
}

// RatingSummaryView is the shape returned to clients.
type RatingSummaryView struct {
	AverageRating float64        `json:"averageRating"`
	TotalRatings  int            `json:"totalRatings"`
	Ratings       map[string]int `json:"ratings"`
}

func (s RatingSummary) View() RatingSummaryView {
	buckets := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for k, v := range s.Buckets {
		buckets[k] = v
	}
	return RatingSummaryView{
		AverageRating: s.AverageRating(),
		TotalRatings:  s.TotalRatings,
		Ratings:       buckets,
	}
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) error
	ListReviewsByTry(ctx context.Context, tryID primitive.ObjectID) ([]*Review, error)
	ListReviewsForUser(ctx context.Context, userID string) ([]*Review, error)
	// CreateUserRating stores the rating and bumps the rated user's summary together.
	CreateUserRating(ctx context.Context, rating *UserRating) error
	ListRatingsForUser(ctx context.Context, userID string) ([]*UserRating, error)
	ListRatingsByTry(ctx context.Context, tryID primitive.ObjectID) ([]*UserRating, error)
}
