package services

import (
	"context"
	"errors"
	"testing"

	"github.com/joshua-takyi/tryfield/internal/models"
)

func TestMarkAllReadOnlyTouchesCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tmpl := bulkTemplate()
	for _, user := range []string{"a", "a", "b"} {
		if err := h.notifier.Notify(ctx, tmpl, user); err != nil {
			t.Fatal(err)
		}
	}

	n, err := h.notifier.MarkAllRead(ctx, actor("a"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2", n)
	}
	if unread, _ := h.notifier.UnreadCount(ctx, actor("a")); unread != 0 {
		t.Errorf("a unread = %d", unread)
	}
	if unread, _ := h.notifier.UnreadCount(ctx, actor("b")); unread != 1 {
		t.Errorf("b unread = %d, want 1", unread)
	}
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.notifier.Notify(ctx, bulkTemplate(), "a"); err != nil {
		t.Fatal(err)
	}
	id := h.store.notificationsFor("a")[0].ID

	if err := h.notifier.MarkRead(ctx, actor("b"), id); !errors.Is(err, models.ErrNotificationNotFound) {
		t.Errorf("foreign mark read: err = %v", err)
	}
	if err := h.notifier.MarkRead(ctx, actor("a"), id); err != nil {
		t.Fatal(err)
	}
	list, _ := h.notifier.List(ctx, actor("a"), 0)
	if len(list) != 1 || !list[0].IsRead {
		t.Errorf("list = %+v", list)
	}
}

func TestNotifyFallsBackToOutbox(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.failInserts = 1

	if err := h.notifier.Notify(ctx, bulkTemplate(), "a"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := len(h.store.notificationsFor("a")); got != 0 {
		t.Fatalf("direct write should have failed, got %d", got)
	}
	h.worker.Drain(ctx)
	if got := len(h.store.notificationsFor("a")); got != 1 {
		t.Errorf("after drain got %d notifications, want 1", got)
	}
}

func TestSendBulkRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.notifier.SendBulk(ctx, actor("a"), []string{"b"}, "t", "m", ""); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("non-admin: err = %v", err)
	}
	admin := Actor{ID: "ops", Admin: true}
	if _, err := h.notifier.SendBulk(ctx, admin, []string{"b"}, " ", "m", ""); err == nil {
		t.Error("blank title accepted")
	}
	entry, err := h.notifier.SendBulk(ctx, admin, []string{"b", "c"}, "お知らせ", "本文", "")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Template.Link != "/notifications" || entry.Template.Metadata.SenderID != "system" {
		t.Errorf("template = %+v", entry.Template)
	}
	h.worker.Drain(ctx)
	if got := h.store.notificationsFor("c"); len(got) != 1 || got[0].Type != models.NotificationBulk {
		t.Errorf("c inbox = %v", typesOf(got))
	}
}

func TestEnqueueWithoutRecipients(t *testing.T) {
	h := newHarness(t)
	entry, err := h.notifier.Enqueue(context.Background(), bulkTemplate(), []string{"", ""})
	if err != nil || entry != nil {
		t.Errorf("Enqueue = %v, %v; want nil, nil", entry, err)
	}
}
