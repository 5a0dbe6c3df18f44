package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TryService struct {
	tries          models.TryRepo
	participations models.ParticipationRepo
	drafts         models.DraftRepo
	notifier       *NotificationService
	logger         *slog.Logger
}

func NewTryService(tries models.TryRepo, participations models.ParticipationRepo, drafts models.DraftRepo, notifier *NotificationService, logger *slog.Logger) *TryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TryService{
		tries:          tries,
		participations: participations,
		drafts:         drafts,
		notifier:       notifier,
		logger:         logger,
	}
}

// CreateTry stores a new open try owned by actor. clearDraft drops the saved form on success.
func (ts *TryService) CreateTry(ctx context.Context, actor Actor, try *models.Try, clearDraft bool) (*models.Try, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	try.OwnerID = actor.ID
	try.Status = ""
	try.Progress = 0
	try.CompletedAt = nil
	try.Sanitize()
	if err := try.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(try); err != nil {
		return nil, err
	}
	created, err := ts.tries.CreateTry(ctx, try)
	if err != nil {
		return nil, err
	}
	if clearDraft && ts.drafts != nil {
		if err := ts.drafts.DeleteDraft(ctx, actor.ID); err != nil {
			ts.logger.Warn("failed to clear draft after submit", "user_id", actor.ID, "error", err)
		}
	}
	return created, nil
}

func (ts *TryService) GetTry(ctx context.Context, id primitive.ObjectID) (*models.Try, error) {
	if id.IsZero() {
		return nil, models.ErrTryNotFound
	}
	return ts.tries.GetTry(ctx, id)
}

func (ts *TryService) ListTries(ctx context.Context, filter models.TryFilter) ([]*models.Try, int64, error) {
	filter.Limit = clampLimit(filter.Limit, 100)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Category != "" {
		if err := models.Validate.Var(string(filter.Category), "oneof=event project recruitment sports other"); err != nil {
			return nil, 0, fmt.Errorf("%w: invalid category filter: %v", models.ErrInvalidInput, err)
		}
	}
	return ts.tries.ListTries(ctx, filter)
}

func (ts *TryService) ownedTry(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Try, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	try, err := ts.GetTry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !try.IsOwner(actor.ID) {
		return nil, models.ErrNotOrganizer
	}
	return try, nil
}

// UpdateTry applies the organizer's edit and tells approved participants about it.
// Progress reaching 100 completes the try.
func (ts *TryService) UpdateTry(ctx context.Context, actor Actor, id primitive.ObjectID, update *models.TryUpdate) (*models.Try, error) {
	if update == nil || update.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrInvalidInput)
	}
	update.Normalize()
	if err := models.Validate.Struct(update); err != nil {
		return nil, err
	}
	current, err := ts.ownedTry(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.TryStatusCompleted {
		return nil, models.ErrTryAlreadyCompleted
	}
	if update.OnlyProgress() && update.Completes() {
		return ts.CompleteTry(ctx, actor, id, nil)
	}

	updated, err := ts.tries.UpdateTry(ctx, id, update.Apply(current))
	if err != nil {
		return nil, err
	}

	tmpl := models.NotificationTemplate{
		Type:  models.NotificationTryUpdated,
		TryID: id.Hex(),
		Link:  tryLink(id),
	}
	if update.DatesChanged(current) {
		oldDate, newDate := current.FirstDate(), updated.FirstDate()
		tmpl.Type = models.NotificationDateChanged
		tmpl.Title, tmpl.Message = ts.notifier.Compose(tmpl.Type, map[string]any{
			"Title": updated.Title, "OldDate": oldDate, "NewDate": newDate,
		})
		tmpl.Metadata = &models.NotificationMetadata{OldDate: oldDate, NewDate: newDate, TryTitle: updated.Title}
	} else {
		tmpl.Title, tmpl.Message = ts.notifier.Compose(tmpl.Type, map[string]any{"Title": updated.Title})
	}
	ts.fanOutToParticipants(ctx, id, tmpl)
	if update.Completes() {
		return ts.CompleteTry(ctx, actor, id, nil)
	}
	return updated, nil
}

func (ts *TryService) DeleteTry(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if _, err := ts.ownedTry(ctx, actor, id); err != nil {
		return err
	}
	return ts.tries.DeleteTry(ctx, id)
}

// CompleteTry closes out the try and invites approved participants to review.
func (ts *TryService) CompleteTry(ctx context.Context, actor Actor, id primitive.ObjectID, completion *models.Completion) (*models.Try, error) {
	if completion == nil {
		completion = &models.Completion{CompletionStatus: models.CompletionCompleted}
	}
	if completion.CompletionStatus == "" {
		completion.CompletionStatus = models.CompletionCompleted
	}
	if err := models.Validate.Struct(completion); err != nil {
		return nil, err
	}
	if _, err := ts.ownedTry(ctx, actor, id); err != nil {
		return nil, err
	}
	completion.TryID = id
	completion.OrganizerID = actor.ID
	if err := completion.BeforeCreate(); err != nil {
		return nil, err
	}

	completed, err := ts.tries.CompleteTry(ctx, completion)
	if err != nil {
		return nil, err
	}

	tmpl := models.NotificationTemplate{
		Type:     models.NotificationTryCompleted,
		TryID:    id.Hex(),
		Link:     tryLink(id),
		Metadata: &models.NotificationMetadata{TryTitle: completed.Title},
	}
	tmpl.Title, tmpl.Message = ts.notifier.Compose(tmpl.Type, map[string]any{"Title": completed.Title})
	ts.fanOutToParticipants(ctx, id, tmpl)
	return completed, nil
}

// fanOutToParticipants queues tmpl for every approved participant. Failures are logged only.
func (ts *TryService) fanOutToParticipants(ctx context.Context, tryID primitive.ObjectID, tmpl models.NotificationTemplate) {
	recipients, err := approvedUserIDs(ctx, ts.participations, tryID)
	if err != nil {
		ts.logger.Error("failed to load participants for fan-out", "try_id", tryID.Hex(), "type", tmpl.Type, "error", err)
		return
	}
	if _, err := ts.notifier.Enqueue(ctx, tmpl, recipients); err != nil {
		ts.logger.Error("failed to queue fan-out", "try_id", tryID.Hex(), "type", tmpl.Type, "error", err)
	}
}
