package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewInput struct {
	UserID  string `json:"user_id" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ReviewService struct {
	reviews        models.ReviewRepo
	tries          models.TryRepo
	participations models.ParticipationRepo
	users          models.UserRepo
	notifier       *NotificationService
	logger         *slog.Logger
}

func NewReviewService(reviews models.ReviewRepo, tries models.TryRepo, participations models.ParticipationRepo, users models.UserRepo, notifier *NotificationService, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		reviews:        reviews,
		tries:          tries,
		participations: participations,
		users:          users,
		notifier:       notifier,
		logger:         logger,
	}
}

// completedPair checks that both users took part in the completed try.
func (rs *ReviewService) completedPair(ctx context.Context, actor Actor, tryID primitive.ObjectID, in *ReviewInput) (*models.Try, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	in.UserID = strings.TrimSpace(in.UserID)
	if err := models.Validate.Struct(in); err != nil {
		return nil, err
	}
	if in.UserID == actor.ID {
		return nil, models.ErrSelfAction
	}
	try, err := rs.tries.GetTry(ctx, tryID)
	if err != nil {
		return nil, err
	}
	if try.Status != models.TryStatusCompleted {
		return nil, models.ErrTryNotCompleted
	}
	for _, id := range []string{actor.ID, in.UserID} {
		ok, err := isMember(ctx, rs.participations, try, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.ErrNotParticipant
		}
	}
	return try, nil
}

func (rs *ReviewService) SubmitReview(ctx context.Context, actor Actor, tryID primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	try, err := rs.completedPair(ctx, actor, tryID, &in)
	if err != nil {
		return nil, err
	}
	review := &models.Review{
		TryID:          try.ID,
		ReviewerID:     actor.ID,
		ReviewedUserID: in.UserID,
		Rating:         in.Rating,
		Comment:        in.Comment,
	}
	if err := review.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := rs.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	tmpl := models.NotificationTemplate{
		Type:  models.NotificationTryReview,
		TryID: try.ID.Hex(),
		Link:  tryLink(try.ID),
		Metadata: &models.NotificationMetadata{
			TryTitle:       try.Title,
			Rating:         review.Rating,
			ReviewerID:     review.ReviewerID,
			ReviewedUserID: review.ReviewedUserID,
		},
	}
	tmpl.Title, tmpl.Message = rs.notifier.Compose(tmpl.Type, map[string]any{"Title": try.Title, "Rating": review.Rating})
	if err := rs.notifier.Notify(ctx, tmpl, review.ReviewedUserID); err != nil {
		rs.logger.Error("failed to notify reviewed user", "review_id", review.ID.Hex(), "error", err)
	}
	return review, nil
}

func (rs *ReviewService) RateUser(ctx context.Context, actor Actor, tryID primitive.ObjectID, in ReviewInput) (*models.UserRating, error) {
	try, err := rs.completedPair(ctx, actor, tryID, &in)
	if err != nil {
		return nil, err
	}
	rating := &models.UserRating{
		RaterID: actor.ID,
		RatedID: in.UserID,
		TryID:   try.ID,
		Rating:  in.Rating,
		Comment: in.Comment,
	}
	if err := rating.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := rs.reviews.CreateUserRating(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (rs *ReviewService) TryReviews(ctx context.Context, tryID primitive.ObjectID) ([]*models.Review, error) {
	return rs.reviews.ListReviewsByTry(ctx, tryID)
}

func (rs *ReviewService) TryRatings(ctx context.Context, tryID primitive.ObjectID) ([]*models.UserRating, error) {
	return rs.reviews.ListRatingsByTry(ctx, tryID)
}

// UserRatings returns the ratings a user received, subject to their evaluation visibility.
func (rs *ReviewService) UserRatings(ctx context.Context, viewer Actor, userID string) ([]*models.UserRating, error) {
	user, err := rs.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !models.CanAccess(user.PrivacyOrDefault().ActivityHistory.Evaluations, user.ID, viewer.ID) {
		return nil, models.ErrForbidden
	}
	return rs.reviews.ListRatingsForUser(ctx, userID)
}

func (rs *ReviewService) RatingSummary(ctx context.Context, viewer Actor, userID string) (models.RatingSummaryView, error) {
	user, err := rs.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.RatingSummaryView{}, err
	}
	if !models.CanAccess(user.PrivacyOrDefault().ActivityHistory.Evaluations, user.ID, viewer.ID) {
		return models.RatingSummaryView{}, models.ErrForbidden
	}
	return user.RatingSummary.View(), nil
}
