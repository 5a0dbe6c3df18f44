package push

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/joshua-takyi/tryfield/internal/models"
	"google.golang.org/api/option"
)

const androidChannelID = "tryfield_notifications"

// TokenStore is the part of the user repository push delivery needs.
type TokenStore interface {
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
	RemoveDeviceToken(ctx context.Context, userID, token string) error
}

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMPusher sends stored notifications to every registered device of the recipient.
type FCMPusher struct {
	client multicastSender
	tokens TokenStore
	logger *slog.Logger
}

// NewFirebaseApp builds the admin app from base64 JSON credentials or a credentials file.
func NewFirebaseApp(ctx context.Context, projectID, credentialsBase64, credentialsFile string) (*firebase.App, error) {
	var opt option.ClientOption
	switch {
	case credentialsBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, fmt.Errorf("firebase credentials are not configured")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

func NewFCMPusher(ctx context.Context, app *firebase.App, tokens TokenStore, logger *slog.Logger) (*FCMPusher, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return newFCMPusher(client, tokens, logger), nil
}

func newFCMPusher(client multicastSender, tokens TokenStore, logger *slog.Logger) *FCMPusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMPusher{client: client, tokens: tokens, logger: logger}
}

// Push is best effort. Tokens FCM reports as unregistered are dropped from the profile.
func (p *FCMPusher) Push(ctx context.Context, n *models.Notification) error {
	tokens, err := p.tokens.DeviceTokens(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("error loading device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	resp, err := p.client.SendEachForMulticast(ctx, Message(n, tokens))
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	for i, r := range resp.Responses {
		if r.Success || i >= len(tokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) {
			if err := p.tokens.RemoveDeviceToken(ctx, n.UserID, tokens[i]); err != nil {
				p.logger.Warn("failed to prune device token", "user_id", n.UserID, "error", err)
			}
			continue
		}
		p.logger.Debug("FCM delivery failed", "user_id", n.UserID, "error", r.Error)
	}
	p.logger.Debug("FCM notification sent", "user_id", n.UserID, "success", resp.SuccessCount, "failure", resp.FailureCount)
	return nil
}

// Message maps a notification onto an FCM multicast payload.
func Message(n *models.Notification, tokens []string) *messaging.MulticastMessage {
	data := map[string]string{
		"notificationId": n.ID.Hex(),
		"type":           string(n.Type),
	}
	if n.TryID != "" {
		data["tryId"] = n.TryID
	}
	if n.ChatID != "" {
		data["chatId"] = n.ChatID
	}
	if n.Link != "" {
		data["link"] = n.Link
	}
	badge := 1
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: androidChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Message,
					},
					Sound:    "default",
					Badge:    &badge,
					Category: string(n.Type),
				},
			},
		},
	}
}
