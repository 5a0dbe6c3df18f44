package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTryJoined           NotificationType = "try_joined"
	NotificationTryCompleted        NotificationType = "try_completed"
	NotificationTryUpdated          NotificationType = "try_updated"
	NotificationTryApplication      NotificationType = "try_application"
	NotificationChatMessage         NotificationType = "chat_message"
	NotificationApplicationApproved NotificationType = "application_approved"
	NotificationApplicationRejected NotificationType = "application_rejected"
	NotificationTryReview           NotificationType = "try_review"
	NotificationDateChanged         NotificationType = "date_changed"
	NotificationBulk                NotificationType = "bulk_notification"
)

type NotificationMetadata struct {
	OldDate        string `bson:"old_date,omitempty" json:"oldDate,omitempty"`
	NewDate        string `bson:"new_date,omitempty" json:"newDate,omitempty"`
	SenderID       string `bson:"sender_id,omitempty" json:"senderId,omitempty"`
	TryTitle       string `bson:"try_title,omitempty" json:"tryTitle,omitempty"`
	Rating         int    `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewerID     string `bson:"reviewer_id,omitempty" json:"reviewerId,omitempty"`
	ReviewedUserID string `bson:"reviewed_user_id,omitempty" json:"reviewedUserId,omitempty"`
}

type Notification struct {
	ID        primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID    string                `bson:"user_id" json:"user_id" validate:"required"`
	Type      NotificationType      `bson:"type" json:"type" validate:"required"`
	Title     string                `bson:"title" json:"title"`
	Message   string                `bson:"message" json:"message"`
	IsRead    bool                  `bson:"is_read" json:"is_read"`
	TryID     string                `bson:"try_id,omitempty" json:"try_id,omitempty"`
	ChatID    string                `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	Link      string                `bson:"link,omitempty" json:"link,omitempty"`
	Metadata  *NotificationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	OutboxID  *primitive.ObjectID   `bson:"outbox_id,omitempty" json:"-"`
	CreatedAt time.Time             `bson:"created_at" json:"created_at"`
}

func (n *Notification) BeforeCreate() error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.IsRead = false
	return nil
}

// NotificationTemplate is the recipient-independent part of a fan-out.
type NotificationTemplate struct {
	Type     NotificationType      `bson:"type" json:"type"`
	Title    string                `bson:"title" json:"title"`
	Message  string                `bson:"message" json:"message"`
	TryID    string                `bson:"try_id,omitempty" json:"try_id,omitempty"`
	ChatID   string                `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	Link     string                `bson:"link,omitempty" json:"link,omitempty"`
	Metadata *NotificationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// For builds the notification addressed to one recipient.
func (t NotificationTemplate) For(userID string) *Notification {
	return &Notification{
		UserID:   userID,
		Type:     t.Type,
		Title:    t.Title,
		Message:  t.Message,
		TryID:    t.TryID,
		ChatID:   t.ChatID,
		Link:     t.Link,
		Metadata: t.Metadata,
	}
}

type NotificationRepo interface {
	// InsertNotification is idempotent for notifications carrying an OutboxID.
	// inserted is false when an earlier attempt already stored the row.
	InsertNotification(ctx context.Context, n *Notification) (inserted bool, err error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}
