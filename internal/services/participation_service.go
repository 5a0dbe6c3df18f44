package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinRequest is the applicant's form.
type JoinRequest struct {
	Name         string `json:"name" validate:"max=50"`
	Email        string `json:"email" validate:"omitempty,email"`
	Introduction string `json:"introduction" validate:"max=1000"`
}

// ParticipationService owns the admission state machine. Every status change goes through transition.
type ParticipationService struct {
	tries          models.TryRepo
	participations models.ParticipationRepo
	notifier       *NotificationService
	logger         *slog.Logger
}

func NewParticipationService(tries models.TryRepo, participations models.ParticipationRepo, notifier *NotificationService, logger *slog.Logger) *ParticipationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipationService{
		tries:          tries,
		participations: participations,
		notifier:       notifier,
		logger:         logger,
	}
}

func (ps *ParticipationService) transition(ctx context.Context, try *models.Try, p *models.Participation, to models.ParticipationStatus) (*models.Participation, error) {
	if !models.CanTransition(p.Status, to) {
		return nil, models.ErrInvalidTransition
	}
	if to == models.StatusApproved {
		if _, err := ps.tries.ClaimSeat(ctx, try.ID); err != nil {
			return nil, err
		}
	}

	updated, err := ps.participations.TransitionParticipation(ctx, p.ID, p.Status, to)
	if err != nil {
		if to == models.StatusApproved {
			ps.releaseSeat(ctx, try.ID)
		}
		return nil, err
	}

	if p.Status == models.StatusApproved && to == models.StatusWithdrawn {
		ps.releaseSeat(ctx, try.ID)
	}
	return updated, nil
}

func (ps *ParticipationService) releaseSeat(ctx context.Context, tryID primitive.ObjectID) {
	if err := ps.tries.ReleaseSeat(ctx, tryID); err != nil {
		ps.logger.Error("failed to release seat", "try_id", tryID.Hex(), "error", err)
	}
}

// Request files a join request. Under first-come admission it is approved on the spot.
func (ps *ParticipationService) Request(ctx context.Context, actor Actor, tryID primitive.ObjectID, req JoinRequest) (*models.Participation, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}
	try, err := ps.tries.GetTry(ctx, tryID)
	if err != nil {
		return nil, err
	}
	if try.Status != models.TryStatusOpen {
		return nil, models.ErrTryNotOpen
	}
	if try.IsOwner(actor.ID) {
		return nil, models.ErrSelfAction
	}

	p := &models.Participation{
		TryID:        try.ID,
		UserID:       actor.ID,
		Name:         req.Name,
		Email:        req.Email,
		Introduction: req.Introduction,
	}
	if err := p.BeforeCreate(); err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = actor.DisplayName
	}
	if p.Name == "" {
		p.Name = ps.notifier.GuestName()
	}
	if err := models.Validate.Struct(p); err != nil {
		return nil, err
	}

	created, err := ps.participations.CreateParticipation(ctx, p)
	if err != nil {
		return nil, err
	}

	if try.AdmissionPolicy == models.AdmissionFirstCome {
		approved, err := ps.transition(ctx, try, created, models.StatusApproved)
		if err != nil {
			if delErr := ps.participations.DeleteParticipation(ctx, created.ID); delErr != nil {
				ps.logger.Error("failed to drop unadmitted request", "participation_id", created.ID.Hex(), "error", delErr)
			}
			return nil, err
		}
		ps.notifyOrganizer(ctx, try, approved, models.NotificationTryJoined)
		return approved, nil
	}

	ps.notifyOrganizer(ctx, try, created, models.NotificationTryApplication)
	return created, nil
}

func (ps *ParticipationService) organizerAction(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Try, *models.Participation, error) {
	if err := actor.valid(); err != nil {
		return nil, nil, err
	}
	p, err := ps.participations.GetParticipation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	try, err := ps.tries.GetTry(ctx, p.TryID)
	if err != nil {
		return nil, nil, err
	}
	if !try.IsOwner(actor.ID) {
		return nil, nil, models.ErrNotOrganizer
	}
	return try, p, nil
}

func (ps *ParticipationService) Approve(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Participation, error) {
	try, p, err := ps.organizerAction(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := ps.transition(ctx, try, p, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	ps.notifyApplicant(ctx, try, updated, models.NotificationApplicationApproved)
	return updated, nil
}

func (ps *ParticipationService) Reject(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Participation, error) {
	try, p, err := ps.organizerAction(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := ps.transition(ctx, try, p, models.StatusRejected)
	if err != nil {
		return nil, err
	}
	ps.notifyApplicant(ctx, try, updated, models.NotificationApplicationRejected)
	return updated, nil
}

// Withdraw lets a participant leave, freeing the seat if they held one.
func (ps *ParticipationService) Withdraw(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Participation, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	p, err := ps.participations.GetParticipation(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.ID {
		return nil, models.ErrForbidden
	}
	try, err := ps.tries.GetTry(ctx, p.TryID)
	if err != nil {
		return nil, err
	}
	return ps.transition(ctx, try, p, models.StatusWithdrawn)
}

// List shows the organizer every record and everyone else the approved ones.
func (ps *ParticipationService) List(ctx context.Context, actor Actor, tryID primitive.ObjectID) ([]*models.Participation, error) {
	try, err := ps.tries.GetTry(ctx, tryID)
	if err != nil {
		return nil, err
	}
	if actor.ID != "" && try.IsOwner(actor.ID) {
		return ps.participations.ListParticipations(ctx, tryID, "")
	}
	return ps.participations.ListParticipations(ctx, tryID, models.StatusApproved)
}

func (ps *ParticipationService) ListMine(ctx context.Context, actor Actor) ([]*models.Participation, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	return ps.participations.ListParticipationsByUser(ctx, actor.ID)
}

// MyParticipation returns the actor's active record for the try, if any.
func (ps *ParticipationService) MyParticipation(ctx context.Context, actor Actor, tryID primitive.ObjectID) (*models.Participation, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	return ps.participations.FindActiveParticipation(ctx, tryID, actor.ID)
}

// Audience is the organizer plus every approved participant.
func (ps *ParticipationService) Audience(ctx context.Context, tryID primitive.ObjectID) ([]string, error) {
	try, err := ps.tries.GetTry(ctx, tryID)
	if err != nil {
		if errors.Is(err, models.ErrTryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ids, err := approvedUserIDs(ctx, ps.participations, tryID)
	if err != nil {
		return nil, err
	}
	return append([]string{try.OwnerID}, ids...), nil
}

func (ps *ParticipationService) notifyOrganizer(ctx context.Context, try *models.Try, p *models.Participation, kind models.NotificationType) {
	tmpl := models.NotificationTemplate{
		Type:     kind,
		TryID:    try.ID.Hex(),
		Link:     tryLink(try.ID),
		Metadata: &models.NotificationMetadata{SenderID: p.UserID, TryTitle: try.Title},
	}
	tmpl.Title, tmpl.Message = ps.notifier.Compose(kind, map[string]any{"Name": p.Name, "Title": try.Title})
	if err := ps.notifier.Notify(ctx, tmpl, try.OwnerID); err != nil {
		ps.logger.Error("failed to notify organizer", "try_id", try.ID.Hex(), "type", kind, "error", err)
	}
}

func (ps *ParticipationService) notifyApplicant(ctx context.Context, try *models.Try, p *models.Participation, kind models.NotificationType) {
	tmpl := models.NotificationTemplate{
		Type:     kind,
		TryID:    try.ID.Hex(),
		Link:     tryLink(try.ID),
		Metadata: &models.NotificationMetadata{SenderID: try.OwnerID, TryTitle: try.Title},
	}
	tmpl.Title, tmpl.Message = ps.notifier.Compose(kind, map[string]any{"Title": try.Title})
	if err := ps.notifier.Notify(ctx, tmpl, p.UserID); err != nil {
		ps.logger.Error("failed to notify applicant", "participation_id", p.ID.Hex(), "type", kind, "error", err)
	}
}
