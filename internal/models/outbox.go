package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxCompleted OutboxStatus = "completed"
	OutboxFailed    OutboxStatus = "failed"
)

// Outbox is one persisted multi-recipient fan-out.
type Outbox struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Template      NotificationTemplate `bson:"template" json:"template"`
	Recipients    []string             `bson:"recipients" json:"recipients"`
	Delivered     []string             `bson:"delivered" json:"delivered"`
	Attempts      int                  `bson:"attempts" json:"attempts"`
	Status        OutboxStatus         `bson:"status" json:"status"`
	NextAttemptAt time.Time            `bson:"next_attempt_at" json:"next_attempt_at"`
	LastError     string               `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	CompletedAt   *time.Time           `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

func (o *Outbox) BeforeCreate() error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	o.CreatedAt = now
	o.NextAttemptAt = now
	o.Status = OutboxPending
	o.Recipients = uniqueNonEmpty(o.Recipients)
	if o.Delivered == nil {
		o.Delivered = []string{}
	}
	return nil
}

// Pending lists recipients not yet delivered.
func (o *Outbox) Pending() []string {
	done := make(map[string]struct{}, len(o.Delivered))
	for _, d := range o.Delivered {
		done[d] = struct{}{}
	}
	var pending []string
	for _, r := range o.Recipients {
		if _, ok := done[r]; !ok {
			pending = append(pending, r)
		}
	}
	return pending
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type OutboxRepo interface {
	CreateOutbox(ctx context.Context, o *Outbox) error
	// ClaimDueOutbox leases one due pending entry by pushing its next attempt to leaseUntil.
	// It returns nil, nil when nothing is due.
	ClaimDueOutbox(ctx context.Context, now, leaseUntil time.Time) (*Outbox, error)
	MarkOutboxDelivered(ctx context.Context, id primitive.ObjectID, recipient string) error
	RescheduleOutbox(ctx context.Context, id primitive.ObjectID, attempts int, next time.Time, lastErr string) error
	FinishOutbox(ctx context.Context, id primitive.ObjectID, status OutboxStatus, lastErr string) error
}
