package services

import (
	"context"
	"log/slog"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService is the per-try group chat shared by the organizer and approved participants.
type ChatService struct {
	chats          models.ChatRepo
	tries          models.TryRepo
	participations models.ParticipationRepo
	notifier       *NotificationService
	logger         *slog.Logger
}

func NewChatService(chats models.ChatRepo, tries models.TryRepo, participations models.ParticipationRepo, notifier *NotificationService, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		chats:          chats,
		tries:          tries,
		participations: participations,
		notifier:       notifier,
		logger:         logger,
	}
}

func (cs *ChatService) memberTry(ctx context.Context, actor Actor, tryID primitive.ObjectID) (*models.Try, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	try, err := cs.tries.GetTry(ctx, tryID)
	if err != nil {
		return nil, err
	}
	ok, err := isMember(ctx, cs.participations, try, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotParticipant
	}
	return try, nil
}

func (cs *ChatService) Post(ctx context.Context, actor Actor, tryID primitive.ObjectID, content string) (*models.TryChatMessage, error) {
	try, err := cs.memberTry(ctx, actor, tryID)
	if err != nil {
		return nil, err
	}
	msg := &models.TryChatMessage{
		TryID:           try.ID,
		UserID:          actor.ID,
		UserDisplayName: actor.DisplayName,
		UserPhotoURL:    actor.PhotoURL,
		Content:         content,
		IsOrganizer:     try.IsOwner(actor.ID),
	}
	if err := msg.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(msg); err != nil {
		return nil, err
	}
	if err := cs.chats.InsertChatMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipients, err := approvedUserIDs(ctx, cs.participations, try.ID)
	if err != nil {
		cs.logger.Error("failed to load chat audience", "try_id", try.ID.Hex(), "error", err)
		return msg, nil
	}
	recipients = without(append([]string{try.OwnerID}, recipients...), actor.ID)

	tmpl := models.NotificationTemplate{
		Type:     models.NotificationChatMessage,
		TryID:    try.ID.Hex(),
		ChatID:   msg.ID.Hex(),
		Link:     tryLink(try.ID) + "/chat",
		Metadata: &models.NotificationMetadata{SenderID: actor.ID, TryTitle: try.Title},
	}
	tmpl.Title, tmpl.Message = cs.notifier.Compose(tmpl.Type, map[string]any{
		"Sender": msg.UserDisplayName, "Title": try.Title,
	})
	if _, err := cs.notifier.Enqueue(ctx, tmpl, recipients); err != nil {
		cs.logger.Error("failed to queue chat notifications", "try_id", try.ID.Hex(), "error", err)
	}
	return msg, nil
}

func (cs *ChatService) List(ctx context.Context, actor Actor, tryID primitive.ObjectID, page models.HistoryPage) ([]*models.TryChatMessage, error) {
	if _, err := cs.memberTry(ctx, actor, tryID); err != nil {
		return nil, err
	}
	page.Limit = clampLimit(page.Limit, 500)
	return cs.chats.ListChatMessages(ctx, tryID, page)
}
