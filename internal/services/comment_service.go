package services

import (
	"context"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments models.CommentRepo
	tries    models.TryRepo
}

func NewCommentService(comments models.CommentRepo, tries models.TryRepo) *CommentService {
	return &CommentService{comments: comments, tries: tries}
}

func (cs *CommentService) Add(ctx context.Context, actor Actor, tryID primitive.ObjectID, content string) (*models.Comment, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	if _, err := cs.tries.GetTry(ctx, tryID); err != nil {
		return nil, err
	}
	comment := &models.Comment{TryID: tryID, UserID: actor.ID, Content: content}
	if err := comment.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(comment); err != nil {
		return nil, err
	}
	if err := cs.comments.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (cs *CommentService) List(ctx context.Context, tryID primitive.ObjectID) ([]*models.Comment, error) {
	return cs.comments.ListComments(ctx, tryID)
}

// Delete is allowed for the author and the try's organizer.
func (cs *CommentService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := actor.valid(); err != nil {
		return err
	}
	comment, err := cs.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID {
		try, err := cs.tries.GetTry(ctx, comment.TryID)
		if err != nil {
			return err
		}
		if !try.IsOwner(actor.ID) {
			return models.ErrForbidden
		}
	}
	return cs.comments.DeleteComment(ctx, id)
}
