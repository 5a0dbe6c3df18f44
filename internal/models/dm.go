package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DMRoom struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Participants []string           `bson:"participants" json:"participants"`
	PairKey      string             `bson:"pair_key" json:"-"`
	LastMessage  string             `bson:"last_message" json:"last_message"`
	LastSenderID string             `bson:"last_sender_id,omitempty" json:"last_sender_id,omitempty"`
	LastUpdated  time.Time          `bson:"last_updated" json:"last_updated"`
	UnreadCounts map[string]int     `bson:"unread_counts" json:"unread_counts"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

func (r *DMRoom) HasMember(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other member of the room.
func (r *DMRoom) Counterpart(userID string) string {
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func (r *DMRoom) UnreadFor(userID string) int {
	return r.UnreadCounts[userID]
}

// PairKey is the order-independent identity of a two-member room.
func PairKey(a, b string) string {
	pair := []string{strings.TrimSpace(a), strings.TrimSpace(b)}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1]
}

// SortedPair returns a and b in the order stored on the room.
func SortedPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

type DMMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID         primitive.ObjectID `bson:"room_id" json:"room_id"`
	SenderID       string             `bson:"sender_id" json:"sender_id" validate:"required"`
	SenderName     string             `bson:"sender_name" json:"sender_name"`
	SenderPhotoURL string             `bson:"sender_photo_url,omitempty" json:"sender_photo_url,omitempty"`
	Text           string             `bson:"text" json:"text" validate:"required,min=1,max=1000"`
	IsRead         bool               `bson:"is_read" json:"is_read"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

func (m *DMMessage) BeforeCreate() error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()
	m.IsRead = false
	m.Text = strings.TrimSpace(m.Text)
	return nil
}

type DMRepo interface {
	// ResolveRoom returns the room for the unordered pair, creating it if absent.
	ResolveRoom(ctx context.Context, a, b string) (*DMRoom, error)
	GetRoom(ctx context.Context, id primitive.ObjectID) (*DMRoom, error)
	ListRooms(ctx context.Context, userID string) ([]*DMRoom, error)
	// AppendMessage stores msg and updates the room summary in one transaction.
	AppendMessage(ctx context.Context, room *DMRoom, msg *DMMessage) error
	ListMessages(ctx context.Context, roomID primitive.ObjectID, page HistoryPage) ([]*DMMessage, error)
	// MarkRoomRead marks the counterpart's unread messages read and zeroes the reader's counter atomically.
	MarkRoomRead(ctx context.Context, room *DMRoom, readerID string) (int64, error)
}
