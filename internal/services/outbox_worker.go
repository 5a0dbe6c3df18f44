package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshua-takyi/tryfield/internal/models"
)

const (
	outboxLease      = 30 * time.Second
	outboxMaxBackoff = 5 * time.Minute
	outboxDrainLimit = 100
)

// OutboxWorker delivers queued fan-outs with retry. Delivery is at-least-once;
// the notifications collection deduplicates on (outbox_id, user_id).
type OutboxWorker struct {
	outbox        models.OutboxRepo
	notifications models.NotificationRepo
	pusher        Pusher
	logger        *slog.Logger
	interval      time.Duration
	maxAttempts   int
	wake          <-chan struct{}
	now           func() time.Time
}

func NewOutboxWorker(outbox models.OutboxRepo, notifications models.NotificationRepo, pusher Pusher, logger *slog.Logger, interval time.Duration, maxAttempts int, wake <-chan struct{}) *OutboxWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &OutboxWorker{
		outbox:        outbox,
		notifications: notifications,
		pusher:        pusher,
		logger:        logger,
		interval:      interval,
		maxAttempts:   maxAttempts,
		wake:          wake,
		now:           time.Now,
	}
}

// Run drains due entries on every tick or wake-up until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
		case <-w.wake:
		}
		w.Drain(ctx)
	}
}

// Drain processes due entries and returns how many it handled.
func (w *OutboxWorker) Drain(ctx context.Context) int {
	handled := 0
	for handled < outboxDrainLimit {
		now := w.now()
		entry, err := w.outbox.ClaimDueOutbox(ctx, now, now.Add(outboxLease))
		if err != nil {
			w.logger.Error("outbox claim failed", "error", err)
			return handled
		}
		if entry == nil {
			return handled
		}
		w.Process(ctx, entry)
		handled++
	}
	return handled
}

// Process attempts every undelivered recipient of entry once.
func (w *OutboxWorker) Process(ctx context.Context, entry *models.Outbox) {
	var lastErr error
	for _, recipient := range entry.Pending() {
		n := entry.Template.For(recipient)
		id := entry.ID
		n.OutboxID = &id
		if err := n.BeforeCreate(); err != nil {
			lastErr = err
			continue
		}
		inserted, err := w.notifications.InsertNotification(ctx, n)
		if err != nil {
			lastErr = err
			continue
		}
		// A row stored by an earlier attempt was already pushed.
		if inserted && w.pusher != nil {
			if err := w.pusher.Push(ctx, n); err != nil {
				w.logger.Debug("push delivery failed", "recipient", recipient, "error", err)
			}
		}
		if err := w.outbox.MarkOutboxDelivered(ctx, entry.ID, recipient); err != nil {
			lastErr = err
			continue
		}
		entry.Delivered = append(entry.Delivered, recipient)
	}

	if lastErr == nil {
		if err := w.outbox.FinishOutbox(ctx, entry.ID, models.OutboxCompleted, ""); err != nil {
			w.logger.Error("outbox completion failed", "outbox_id", entry.ID.Hex(), "error", err)
		}
		return
	}

	attempts := entry.Attempts + 1
	if attempts >= w.maxAttempts {
		w.logger.Error("outbox entry abandoned",
			"outbox_id", entry.ID.Hex(),
			"type", entry.Template.Type,
			"undelivered", len(entry.Pending()),
			"error", lastErr,
		)
		if err := w.outbox.FinishOutbox(ctx, entry.ID, models.OutboxFailed, lastErr.Error()); err != nil {
			w.logger.Error("outbox failure update failed", "outbox_id", entry.ID.Hex(), "error", err)
		}
		return
	}

	next := w.now().Add(Backoff(attempts))
	w.logger.Warn("outbox delivery incomplete, retrying",
		"outbox_id", entry.ID.Hex(),
		"attempt", attempts,
		"next_attempt_at", next,
		"error", lastErr,
	)
	if err := w.outbox.RescheduleOutbox(ctx, entry.ID, attempts, next, lastErr.Error()); err != nil {
		w.logger.Error("outbox reschedule failed", "outbox_id", entry.ID.Hex(), "error", err)
	}
}

// Backoff is 1s doubled per attempt, capped at five minutes.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return outboxMaxBackoff
	}
	d := time.Second << (attempt - 1)
	if d > outboxMaxBackoff {
		return outboxMaxBackoff
	}
	return d
}
