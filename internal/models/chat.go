package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AnonymousDisplayName = "匿名ユーザー"

type TryChatMessage struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TryID           primitive.ObjectID `bson:"try_id" json:"try_id"`
	UserID          string             `bson:"user_id" json:"user_id" validate:"required"`
	UserDisplayName string             `bson:"user_display_name" json:"user_display_name"`
	UserPhotoURL    string             `bson:"user_photo_url,omitempty" json:"user_photo_url,omitempty"`
	Content         string             `bson:"content" json:"content" validate:"required,min=1,max=1000"`
	IsOrganizer     bool               `bson:"is_organizer" json:"is_organizer"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

func (m *TryChatMessage) BeforeCreate() error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()
	m.Content = strings.TrimSpace(m.Content)
	if strings.TrimSpace(m.UserDisplayName) == "" {
		m.UserDisplayName = AnonymousDisplayName
	}
	return nil
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TryID     primitive.ObjectID `bson:"try_id" json:"try_id"`
	UserID    string             `bson:"user_id" json:"user_id" validate:"required"`
	Content   string             `bson:"content" json:"content" validate:"required,min=1,max=500"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

func (c *Comment) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now()
	c.Content = strings.TrimSpace(c.Content)
	return nil
}

type ChatRepo interface {
	InsertChatMessage(ctx context.Context, msg *TryChatMessage) error
	ListChatMessages(ctx context.Context, tryID primitive.ObjectID, page HistoryPage) ([]*TryChatMessage, error)
}

type CommentRepo interface {
	InsertComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, tryID primitive.ObjectID) ([]*Comment, error)
	GetComment(ctx context.Context, id primitive.ObjectID) (*Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}
