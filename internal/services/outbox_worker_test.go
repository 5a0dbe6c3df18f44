package services

import (
	"context"
	"testing"
	"time"

	"github.com/joshua-takyi/tryfield/internal/models"
)

func bulkTemplate() models.NotificationTemplate {
	return models.NotificationTemplate{
		Type:    models.NotificationBulk,
		Title:   "メンテナンスのお知らせ",
		Message: "今夜メンテナンスを行います",
		Link:    "/notifications",
	}
}

func TestOutboxWorkerDeliversFanOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entry, err := h.notifier.Enqueue(ctx, bulkTemplate(), []string{"a", "b", "a", "", "c"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(entry.Recipients) != 3 {
		t.Fatalf("recipients = %v, want deduplicated a b c", entry.Recipients)
	}
	select {
	case <-h.notifier.Wake():
	default:
		t.Error("enqueue did not wake the worker")
	}

	if n := h.worker.Drain(ctx); n != 1 {
		t.Fatalf("drained %d entries, want 1", n)
	}
	for _, user := range []string{"a", "b", "c"} {
		if got := len(h.store.notificationsFor(user)); got != 1 {
			t.Errorf("%s got %d notifications, want 1", user, got)
		}
	}
	stored := h.store.outboxEntry(entry.ID)
	if stored.Status != models.OutboxCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if len(h.pusher.sent) != 3 {
		t.Errorf("pushed %d, want 3", len(h.pusher.sent))
	}
	if n := h.worker.Drain(ctx); n != 0 {
		t.Errorf("second drain handled %d entries", n)
	}
}

func TestOutboxWorkerRetriesFailedRecipients(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entry, err := h.notifier.Enqueue(ctx, bulkTemplate(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	h.store.failInserts = 1

	h.worker.Drain(ctx)
	stored := h.store.outboxEntry(entry.ID)
	if stored.Status != models.OutboxPending || stored.Attempts != 1 {
		t.Fatalf("after first pass: status %s attempts %d", stored.Status, stored.Attempts)
	}
	if want := h.clock.Add(time.Second); !stored.NextAttemptAt.Equal(want) {
		t.Errorf("next attempt = %v, want %v", stored.NextAttemptAt, want)
	}
	if len(stored.Delivered) != 1 || stored.Delivered[0] != "b" {
		t.Fatalf("delivered = %v, want [b]", stored.Delivered)
	}

	// Not due yet.
	if n := h.worker.Drain(ctx); n != 0 {
		t.Fatalf("drained %d entries before backoff elapsed", n)
	}

	h.clock = h.clock.Add(2 * time.Second)
	h.worker.Drain(ctx)
	stored = h.store.outboxEntry(entry.ID)
	if stored.Status != models.OutboxCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	for _, user := range []string{"a", "b"} {
		if got := len(h.store.notificationsFor(user)); got != 1 {
			t.Errorf("%s got %d notifications, want 1", user, got)
		}
	}
}

func TestOutboxRedeliveryIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entry, err := h.notifier.Enqueue(ctx, bulkTemplate(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	// Replaying a stale copy simulates a worker that crashed before recording delivery.
	stale := *entry
	h.worker.Process(ctx, &stale)
	replay := *entry
	replay.Delivered = nil
	h.worker.Process(ctx, &replay)

	for _, user := range []string{"a", "b"} {
		if got := len(h.store.notificationsFor(user)); got != 1 {
			t.Errorf("%s got %d notifications, want 1", user, got)
		}
	}
	if len(h.pusher.sent) != 2 {
		t.Errorf("pushed %d, want 2", len(h.pusher.sent))
	}
}

func TestOutboxRetryDoesNotPushTwice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entry, err := h.notifier.Enqueue(ctx, bulkTemplate(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	// The row lands but recording delivery fails, so the entry is retried.
	h.store.failMarks = 1
	h.worker.Drain(ctx)
	if stored := h.store.outboxEntry(entry.ID); stored.Status != models.OutboxPending || len(stored.Delivered) != 0 {
		t.Fatalf("after first pass: status %s delivered %v", stored.Status, stored.Delivered)
	}

	h.clock = h.clock.Add(time.Hour)
	h.worker.Drain(ctx)
	if stored := h.store.outboxEntry(entry.ID); stored.Status != models.OutboxCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if got := len(h.store.notificationsFor("a")); got != 1 {
		t.Errorf("a got %d notifications, want 1", got)
	}
	if len(h.pusher.sent) != 1 {
		t.Errorf("pushed %d, want 1", len(h.pusher.sent))
	}
}

func TestOutboxWorkerGivesUp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	entry, err := h.notifier.Enqueue(ctx, bulkTemplate(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	h.store.failInserts = 100

	for i := 0; i < 3; i++ {
		h.worker.Drain(ctx)
		h.clock = h.clock.Add(time.Hour)
	}
	stored := h.store.outboxEntry(entry.ID)
	if stored.Status != models.OutboxFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if stored.LastError == "" {
		t.Error("last error not recorded")
	}
	if n := h.worker.Drain(ctx); n != 0 {
		t.Errorf("failed entry was claimed again")
	}
}

func TestBackoff(t *testing.T) {
	cases := map[int]time.Duration{
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		3:  4 * time.Second,
		9:  256 * time.Second,
		10: 5 * time.Minute,
		40: 5 * time.Minute,
	}
	for attempt, want := range cases {
		if got := Backoff(attempt); got != want {
			t.Errorf("Backoff(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.worker.Run(ctx)
		close(done)
	}()
	if _, err := h.notifier.Enqueue(context.Background(), bulkTemplate(), []string{"a"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(2 * time.Second)
	for len(h.store.notificationsFor("a")) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker did not deliver after wake-up")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
