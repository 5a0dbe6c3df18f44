package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DMService struct {
	rooms models.DMRepo
	users models.UserRepo
}

func NewDMService(rooms models.DMRepo, users models.UserRepo) *DMService {
	return &DMService{rooms: rooms, users: users}
}

// OpenRoomWith resolves the actor's room with otherID, honouring the other user's DM setting.
func (ds *DMService) OpenRoomWith(ctx context.Context, actor Actor, otherID string) (*models.DMRoom, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	otherID = strings.TrimSpace(otherID)
	if otherID == "" || otherID == actor.ID {
		return nil, models.ErrSelfAction
	}
	other, err := ds.users.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if !other.PrivacyOrDefault().AllowDirectMessages {
		return nil, models.ErrDirectMessagesDisabled
	}
	return ds.rooms.ResolveRoom(ctx, actor.ID, otherID)
}

func (ds *DMService) Rooms(ctx context.Context, actor Actor) ([]*models.DMRoom, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	return ds.rooms.ListRooms(ctx, actor.ID)
}

func (ds *DMService) memberRoom(ctx context.Context, actor Actor, roomID primitive.ObjectID) (*models.DMRoom, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	room, err := ds.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(actor.ID) {
		return nil, models.ErrNotRoomMember
	}
	return room, nil
}

func (ds *DMService) Send(ctx context.Context, actor Actor, roomID primitive.ObjectID, text string) (*models.DMMessage, error) {
	room, err := ds.memberRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	msg := &models.DMMessage{
		RoomID:         room.ID,
		SenderID:       actor.ID,
		SenderName:     actor.DisplayName,
		SenderPhotoURL: actor.PhotoURL,
		Text:           text,
	}
	if err := msg.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(msg); err != nil {
		return nil, err
	}
	if err := ds.rooms.AppendMessage(ctx, room, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns the newest page of the room's history, oldest first.
func (ds *DMService) Messages(ctx context.Context, actor Actor, roomID primitive.ObjectID, page models.HistoryPage) ([]*models.DMMessage, error) {
	if _, err := ds.memberRoom(ctx, actor, roomID); err != nil {
		return nil, err
	}
	page.Limit = clampLimit(page.Limit, 500)
	return ds.rooms.ListMessages(ctx, roomID, page)
}

// MarkRead clears the actor's unread state for the room and returns how many messages flipped.
func (ds *DMService) MarkRead(ctx context.Context, actor Actor, roomID primitive.ObjectID) (int64, error) {
	room, err := ds.memberRoom(ctx, actor, roomID)
	if err != nil {
		return 0, err
	}
	return ds.rooms.MarkRoomRead(ctx, room, actor.ID)
}
