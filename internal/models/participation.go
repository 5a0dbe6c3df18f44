package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// ParticipationStatus is the admission state of one user for one try.
//
//	requested -> approved | rejected | withdrawn
//	approved  -> withdrawn
type ParticipationStatus string

const (
	StatusRequested ParticipationStatus = "requested"
	StatusApproved  ParticipationStatus = "approved"
	StatusRejected  ParticipationStatus = "rejected"
	StatusWithdrawn ParticipationStatus = "withdrawn"
)

var participationTransitions = map[ParticipationStatus][]ParticipationStatus{
	StatusRequested: {StatusApproved, StatusRejected, StatusWithdrawn},
	StatusApproved:  {StatusWithdrawn},
}

func ParseParticipationStatus(s string) (ParticipationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "requested", "pending":
		return StatusRequested, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	case "withdrawn", "cancelled", "canceled":
		return StatusWithdrawn, nil
	}
	return "", fmt.Errorf("unknown participation status %q", s)
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to ParticipationStatus) bool {
	for _, next := range participationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Active statuses hold (or wait for) a seat and block a second request.
func (s ParticipationStatus) Active() bool {
	return s == StatusRequested || s == StatusApproved
}

func (s ParticipationStatus) Terminal() bool {
	return len(participationTransitions[s]) == 0
}

// UnmarshalBSONValue accepts the legacy pending/cancelled spellings.
func (s *ParticipationStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bsontype.String {
		return fmt.Errorf("participation status must be a string, got %s", t)
	}
	raw, _, ok := bsoncore.ReadString(data)
	if !ok {
		return fmt.Errorf("malformed participation status")
	}
	parsed, err := ParseParticipationStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Participation struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TryID        primitive.ObjectID  `bson:"try_id" json:"try_id"`
	UserID       string              `bson:"user_id" json:"user_id" validate:"required"`
	Status       ParticipationStatus `bson:"status" json:"status"`
	Active       bool                `bson:"active" json:"-"`
	Name         string              `bson:"name" json:"name" validate:"required,min=1,max=50"`
	Email        string              `bson:"email" json:"email" validate:"omitempty,email"`
	Introduction string              `bson:"introduction" json:"introduction" validate:"max=1000"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

func (p *Participation) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Status = StatusRequested
	p.Active = true
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Introduction = strings.TrimSpace(p.Introduction)
	return nil
}

type ParticipationRepo interface {
	CreateParticipation(ctx context.Context, p *Participation) (*Participation, error)
	GetParticipation(ctx context.Context, id primitive.ObjectID) (*Participation, error)
	FindActiveParticipation(ctx context.Context, tryID primitive.ObjectID, userID string) (*Participation, error)
	// TransitionParticipation moves the record from -> to only if it is still in from.
	TransitionParticipation(ctx context.Context, id primitive.ObjectID, from, to ParticipationStatus) (*Participation, error)
	DeleteParticipation(ctx context.Context, id primitive.ObjectID) error
	ListParticipations(ctx context.Context, tryID primitive.ObjectID, status ParticipationStatus) ([]*Participation, error)
	ListParticipationsByUser(ctx context.Context, userID string) ([]*Participation, error)
}

func participationFilter(tryID primitive.ObjectID, status ParticipationStatus) bson.M {
	filter := bson.M{"try_id": tryID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}
