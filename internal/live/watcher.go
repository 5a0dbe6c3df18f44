package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event types sent to subscribers.
const (
	EventNotification  = "notification"
	EventDirectMessage = "dm_message"
	EventChatMessage   = "chat_message"
)

const watchRetryDelay = 5 * time.Second

type CollectionSource interface {
	GetCollection(ctx context.Context, colName string) (*mongo.Collection, error)
}

type RoomSource interface {
	GetRoom(ctx context.Context, id primitive.ObjectID) (*models.DMRoom, error)
}

// AudienceSource lists who may read a try's chat.
type AudienceSource interface {
	Audience(ctx context.Context, tryID primitive.ObjectID) ([]string, error)
}

// Watcher turns inserts on the subscribed collections into hub events.
type Watcher struct {
	source   CollectionSource
	rooms    RoomSource
	audience AudienceSource
	hub      *Hub
	logger   *slog.Logger
}

func NewWatcher(source CollectionSource, rooms RoomSource, audience AudienceSource, hub *Hub, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:   source,
		rooms:    rooms,
		audience: audience,
		hub:      hub,
		logger:   logger,
	}
}

// Run watches every subscribed collection until ctx is cancelled. Change streams need a replica set.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, col := range []string{models.NotificationsColName, models.DMMessagesColName, models.TryChatsColName} {
		wg.Add(1)
		go func(col string) {
			defer wg.Done()
			w.loop(ctx, col)
		}(col)
	}
	wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, colName string) {
	var resume bson.Raw
	for {
		token, err := w.watch(ctx, colName, resume)
		if token != nil {
			resume = token
		}
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("change stream interrupted, retrying", "collection", colName, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

func (w *Watcher) watch(ctx context.Context, colName string, resume bson.Raw) (bson.Raw, error) {
	col, err := w.source.GetCollection(ctx, colName)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}}}
	opts := options.ChangeStream()
	if resume != nil {
		opts.SetResumeAfter(resume)
	}
	stream, err := col.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("error opening change stream: %w", err)
	}
	defer stream.Close(context.Background())

	w.logger.Info("watching collection", "collection", colName)
	var last bson.Raw
	for stream.Next(ctx) {
		var change struct {
			FullDocument bson.Raw `bson:"fullDocument"`
		}
		if err := stream.Decode(&change); err != nil {
			w.logger.Error("failed to decode change event", "collection", colName, "error", err)
			continue
		}
		if err := w.Dispatch(ctx, colName, change.FullDocument); err != nil {
			w.logger.Error("failed to dispatch change", "collection", colName, "error", err)
		}
		last = stream.ResumeToken()
	}
	return last, stream.Err()
}

// Dispatch publishes one inserted document to the users allowed to see it.
func (w *Watcher) Dispatch(ctx context.Context, colName string, doc bson.Raw) error {
	switch colName {
	case models.NotificationsColName:
		var n models.Notification
		if err := bson.Unmarshal(doc, &n); err != nil {
			return err
		}
		w.hub.Publish([]string{n.UserID}, Event{Type: EventNotification, Data: n})

	case models.DMMessagesColName:
		var m models.DMMessage
		if err := bson.Unmarshal(doc, &m); err != nil {
			return err
		}
		room, err := w.rooms.GetRoom(ctx, m.RoomID)
		if err != nil {
			return err
		}
		w.hub.Publish(room.Participants, Event{Type: EventDirectMessage, Data: m})

	case models.TryChatsColName:
		var m models.TryChatMessage
		if err := bson.Unmarshal(doc, &m); err != nil {
			return err
		}
		audience, err := w.audience.Audience(ctx, m.TryID)
		if err != nil {
			return err
		}
		w.hub.Publish(audience, Event{Type: EventChatMessage, Data: m})

	default:
		return fmt.Errorf("unsupported collection %q", colName)
	}
	return nil
}
