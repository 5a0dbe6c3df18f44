package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/joshua-takyi/tryfield/internal/i18n"
	"github.com/joshua-takyi/tryfield/internal/models"
)

type harness struct {
	store          *memStore
	pusher         *recordingPusher
	clock          time.Time
	notifier       *NotificationService
	worker         *OutboxWorker
	tries          *TryService
	participations *ParticipationService
	chat           *ChatService
	dm             *DMService
	reviews        *ReviewService
	users          *UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	pusher := &recordingPusher{}
	notifier := NewNotificationService(store, store, i18n.NewTranslator("ja", logger), "ja", pusher, logger)

	h := &harness{
		store:          store,
		pusher:         pusher,
		clock:          time.Now().Add(time.Minute),
		notifier:       notifier,
		tries:          NewTryService(store, store, store, notifier, logger),
		participations: NewParticipationService(store, store, notifier, logger),
		chat:           NewChatService(store, store, store, notifier, logger),
		dm:             NewDMService(store, store),
		reviews:        NewReviewService(store, store, store, store, notifier, logger),
		users:          NewUserService(store, nil, store, logger),
	}
	h.worker = NewOutboxWorker(store, store, pusher, logger, time.Second, 3, notifier.Wake())
	h.worker.now = func() time.Time { return h.clock }
	return h
}

func actor(id string) Actor {
	return Actor{ID: id, DisplayName: id}
}

func (h *harness) seedTry(t *testing.T, owner string, capacity int, policy models.AdmissionPolicy) *models.Try {
	t.Helper()
	try, err := h.tries.CreateTry(context.Background(), actor(owner), &models.Try{
		Title:           "朝ラン",
		Category:        models.CategorySports,
		Description:     "皇居を一周します",
		Dates:           []string{"2026-11-01"},
		Capacity:        capacity,
		AdmissionPolicy: policy,
	}, false)
	if err != nil {
		t.Fatalf("seed try: %v", err)
	}
	return try
}

// join files a request for user and approves it when the try needs approval.
func (h *harness) join(t *testing.T, try *models.Try, user string) *models.Participation {
	t.Helper()
	ctx := context.Background()
	p, err := h.participations.Request(ctx, actor(user), try.ID, JoinRequest{Name: user})
	if err != nil {
		t.Fatalf("request %s: %v", user, err)
	}
	if p.Status == models.StatusApproved {
		return p
	}
	p, err = h.participations.Approve(ctx, actor(try.OwnerID), p.ID)
	if err != nil {
		t.Fatalf("approve %s: %v", user, err)
	}
	return p
}

func typesOf(list []*models.Notification) []models.NotificationType {
	out := make([]models.NotificationType, 0, len(list))
	for _, n := range list {
		out = append(out, n.Type)
	}
	return out
}
