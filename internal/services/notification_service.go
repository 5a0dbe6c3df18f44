package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pusher delivers a stored notification to the recipient's devices.
type Pusher interface {
	Push(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	repo   models.NotificationRepo
	outbox models.OutboxRepo
	tr     Translator
	locale string
	pusher Pusher
	logger *slog.Logger
	wake   chan struct{}
}

func NewNotificationService(repo models.NotificationRepo, outbox models.OutboxRepo, tr Translator, locale string, pusher Pusher, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   repo,
		outbox: outbox,
		tr:     tr,
		locale: locale,
		pusher: pusher,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Wake is signalled whenever a new outbox entry is written.
func (ns *NotificationService) Wake() <-chan struct{} {
	return ns.wake
}

// Compose renders the localized title and message for kind.
func (ns *NotificationService) Compose(kind models.NotificationType, data map[string]any) (string, string) {
	if ns.tr == nil {
		return "", ""
	}
	return ns.tr.T(ns.locale, string(kind)+"_title", data), ns.tr.T(ns.locale, string(kind)+"_message", data)
}

func (ns *NotificationService) GuestName() string {
	if ns.tr == nil {
		return ""
	}
	return ns.tr.T(ns.locale, "guest_name", nil)
}

// Notify writes a single-recipient notification. A failed write is handed to the outbox for retry.
func (ns *NotificationService) Notify(ctx context.Context, tmpl models.NotificationTemplate, recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("%w: recipient is required", models.ErrInvalidInput)
	}
	n := tmpl.For(recipient)
	if err := n.BeforeCreate(); err != nil {
		return err
	}
	if err := models.Validate.Struct(n); err != nil {
		return err
	}
	if _, err := ns.repo.InsertNotification(ctx, n); err != nil {
		ns.logger.Warn("notification write failed, queueing for retry",
			"recipient", recipient, "type", tmpl.Type, "error", err)
		_, qErr := ns.Enqueue(ctx, tmpl, []string{recipient})
		return qErr
	}
	ns.push(ctx, n)
	return nil
}

// Enqueue persists a fan-out to many recipients. Delivery happens in the outbox worker.
func (ns *NotificationService) Enqueue(ctx context.Context, tmpl models.NotificationTemplate, recipients []string) (*models.Outbox, error) {
	entry := &models.Outbox{Template: tmpl, Recipients: recipients}
	if err := entry.BeforeCreate(); err != nil {
		return nil, err
	}
	if len(entry.Recipients) == 0 {
		return nil, nil
	}
	if err := ns.outbox.CreateOutbox(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to queue notifications: %w", err)
	}
	select {
	case ns.wake <- struct{}{}:
	default:
	}
	return entry, nil
}

// SendBulk queues an operator broadcast.
func (ns *NotificationService) SendBulk(ctx context.Context, actor Actor, recipients []string, title, message, link string) (*models.Outbox, error) {
	if !actor.Admin {
		return nil, models.ErrForbidden
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, fmt.Errorf("%w: title and message are required", models.ErrInvalidInput)
	}
	if link == "" {
		link = "/notifications"
	}
	return ns.Enqueue(ctx, models.NotificationTemplate{
		Type:     models.NotificationBulk,
		Title:    title,
		Message:  message,
		Link:     link,
		Metadata: &models.NotificationMetadata{SenderID: "system"},
	}, recipients)
}

func (ns *NotificationService) List(ctx context.Context, actor Actor, limit int) ([]*models.Notification, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	return ns.repo.ListNotifications(ctx, actor.ID, clampLimit(limit, 100))
}

func (ns *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	if err := actor.valid(); err != nil {
		return 0, err
	}
	return ns.repo.CountUnread(ctx, actor.ID)
}

func (ns *NotificationService) MarkRead(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := actor.valid(); err != nil {
		return err
	}
	return ns.repo.MarkNotificationRead(ctx, id, actor.ID)
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	if err := actor.valid(); err != nil {
		return 0, err
	}
	return ns.repo.MarkAllNotificationsRead(ctx, actor.ID)
}

func (ns *NotificationService) push(ctx context.Context, n *models.Notification) {
	if ns.pusher == nil {
		return
	}
	if err := ns.pusher.Push(ctx, n); err != nil {
		ns.logger.Debug("push delivery failed", "recipient", n.UserID, "error", err)
	}
}
