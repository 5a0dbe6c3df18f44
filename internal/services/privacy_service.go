package services

import (
	"context"

	"github.com/joshua-takyi/tryfield/internal/models"
)

type PrivacyService struct {
	users models.UserRepo
}

func NewPrivacyService(users models.UserRepo) *PrivacyService {
	return &PrivacyService{users: users}
}

// Get returns the actor's settings, falling back to defaults when none are stored.
func (ps *PrivacyService) Get(ctx context.Context, actor Actor) (models.PrivacySettings, error) {
	if err := actor.valid(); err != nil {
		return models.PrivacySettings{}, err
	}
	user, err := ps.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return models.PrivacySettings{}, err
	}
	return user.PrivacyOrDefault(), nil
}

func (ps *PrivacyService) Update(ctx context.Context, actor Actor, settings models.PrivacySettings) (models.PrivacySettings, error) {
	if err := actor.valid(); err != nil {
		return models.PrivacySettings{}, err
	}
	if err := models.Validate.Struct(settings); err != nil {
		return models.PrivacySettings{}, err
	}
	user, err := ps.users.UpdatePrivacy(ctx, actor.ID, settings)
	if err != nil {
		return models.PrivacySettings{}, err
	}
	return user.PrivacyOrDefault(), nil
}

// CanView decides whether viewer may see ownerID's content guarded by pick.
func (ps *PrivacyService) CanView(ctx context.Context, viewer Actor, ownerID string, pick func(models.PrivacySettings) models.Visibility) (bool, error) {
	owner, err := ps.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return models.CanAccess(pick(owner.PrivacyOrDefault()), owner.ID, viewer.ID), nil
}
