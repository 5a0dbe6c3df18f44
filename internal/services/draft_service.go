package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/tryfield/internal/models"
)

type DraftService struct {
	drafts models.DraftRepo
	ttl    time.Duration
}

func NewDraftService(drafts models.DraftRepo, ttl time.Duration) *DraftService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &DraftService{drafts: drafts, ttl: ttl}
}

func (ds *DraftService) Save(ctx context.Context, actor Actor, draft *models.Draft) (*models.Draft, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	draft.Tags = models.NormalizeTags(draft.Tags)
	if err := models.Validate.Struct(draft); err != nil {
		return nil, err
	}
	draft.LastModified = time.Now()
	if err := ds.drafts.SaveDraft(ctx, actor.ID, draft, ds.ttl); err != nil {
		return nil, err
	}
	return draft, nil
}

func (ds *DraftService) Load(ctx context.Context, actor Actor) (*models.Draft, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	return ds.drafts.LoadDraft(ctx, actor.ID)
}

func (ds *DraftService) Delete(ctx context.Context, actor Actor) error {
	if err := actor.valid(); err != nil {
		return err
	}
	return ds.drafts.DeleteDraft(ctx, actor.ID)
}

func (ds *DraftService) Exists(ctx context.Context, actor Actor) (bool, error) {
	if err := actor.valid(); err != nil {
		return false, err
	}
	return ds.drafts.DraftExists(ctx, actor.ID)
}
