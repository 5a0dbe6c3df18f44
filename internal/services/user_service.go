package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

// Identity is what the identity provider tells us about a signed-in user.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
}

type UserService struct {
	users  models.UserRepo
	auth   models.AuthRepo
	tries  models.TryRepo
	logger *slog.Logger
}

func NewUserService(users models.UserRepo, auth models.AuthRepo, tries models.TryRepo, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		auth:   auth,
		tries:  tries,
		logger: logger,
	}
}

// EnsureProfile provisions the local profile the first time a provider identity signs in.
func (us *UserService) EnsureProfile(ctx context.Context, id Identity) (*models.User, error) {
	if strings.TrimSpace(id.ID) == "" {
		return nil, fmt.Errorf("identity has no subject")
	}
	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		if at := strings.Index(id.Email, "@"); at > 0 {
			name = id.Email[:at]
		}
	}
	user, created, err := us.users.EnsureUser(ctx, &models.User{
		ID:          id.ID,
		DisplayName: name,
		Email:       id.Email,
		PhotoURL:    id.PhotoURL,
	})
	if err != nil {
		return nil, err
	}
	if created {
		us.logger.Info("provisioned user profile", "user_id", user.ID)
	}
	return user, nil
}

func (us *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return us.users.GetUserByID(ctx, id)
}

// Profile returns userID's profile as the viewer is allowed to see it.
func (us *UserService) Profile(ctx context.Context, viewer Actor, userID string) (models.UserView, error) {
	user, err := us.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	badge := models.BadgeBeginner
	if us.tries != nil {
		completed, err := us.tries.CountCompletedByOwner(ctx, user.ID)
		if err != nil {
			us.logger.Warn("failed to count completed tries", "user_id", user.ID, "error", err)
		} else {
			badge = models.BadgeFor(completed)
		}
	}
	return models.FilterUser(user, viewer.ID, badge), nil
}

func (us *UserService) UpdateProfile(ctx context.Context, actor Actor, update *models.ProfileUpdate) (*models.User, error) {
	if err := actor.valid(); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, err
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrInvalidInput)
	}
	return us.users.UpdateUser(ctx, actor.ID, fields)
}

func (us *UserService) RegisterDeviceToken(ctx context.Context, actor Actor, token string) error {
	if err := actor.valid(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: device token is required", models.ErrInvalidInput)
	}
	return us.users.AddDeviceToken(ctx, actor.ID, token)
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", models.ErrInvalidInput)
	}
	resp, err := us.auth.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return resp, nil
}

// ExchangeSession confirms an access token with the provider and provisions the profile.
func (us *UserService) ExchangeSession(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", models.ErrInvalidInput)
	}
	resp, err := us.auth.GetProviderUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return us.EnsureProfile(ctx, Identity{
		ID:          resp.ID.String(),
		Email:       resp.Email,
		DisplayName: metadataString(resp.UserMetadata, "full_name", "name"),
		PhotoURL:    metadataString(resp.UserMetadata, "avatar_url", "picture"),
	})
}

func (us *UserService) SignInURL(provider, redirectTo string) (string, error) {
	return us.auth.AuthorizeURL(provider, redirectTo)
}

func metadataString(meta map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
