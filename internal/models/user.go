package models

import (
	"context"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go/types"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Badge string

const (
	BadgeBeginner     Badge = "beginner"
	BadgeIntermediate Badge = "intermediate"
	BadgeAdvanced     Badge = "advanced"
	BadgeExpert       Badge = "expert"
	BadgeMaster       Badge = "master"
)

var badgeNames = map[Badge]string{
	BadgeBeginner:     "ビギナー",
	BadgeIntermediate: "チャレンジャー",
	BadgeAdvanced:     "エキスパート候補",
	BadgeExpert:       "エキスパート",
	BadgeMaster:       "マスター",
}

func (b Badge) DisplayName() string {
	return badgeNames[b]
}

// BadgeFor maps the number of completed tries to a badge level.
func BadgeFor(completed int64) Badge {
	switch {
	case completed >= 50:
		return BadgeMaster
	case completed >= 25:
		return BadgeExpert
	case completed >= 10:
		return BadgeAdvanced
	case completed >= 3:
		return BadgeIntermediate
	default:
		return BadgeBeginner
	}
}

type User struct {
	ID            string            `bson:"_id" json:"id"`
	DisplayName   string            `bson:"display_name" json:"display_name" validate:"max=50"`
	Email         string            `bson:"email" json:"email"`
	PhoneNumber   string            `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	SocialLinks   map[string]string `bson:"social_links,omitempty" json:"social_links,omitempty"`
	PhotoURL      string            `bson:"photo_url" json:"photo_url"`
	Bio           string            `bson:"bio" json:"bio" validate:"max=500"`
	Role          string            `bson:"role" json:"role"`
	DeviceTokens  []string          `bson:"device_tokens,omitempty" json:"-"`
	Privacy       *PrivacySettings  `bson:"privacy,omitempty" json:"privacy,omitempty"`
	RatingSummary RatingSummary     `bson:"rating_summary" json:"-"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`
}

// PrivacyOrDefault never returns nil.
func (u *User) PrivacyOrDefault() PrivacySettings {
	if u.Privacy == nil {
		return DefaultPrivacySettings()
	}
	return u.Privacy.Normalize()
}

// ProfileUpdate carries the user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string           `json:"display_name" validate:"omitempty,min=1,max=50"`
	PhotoURL    *string           `json:"photo_url" validate:"omitempty,url"`
	Bio         *string           `json:"bio" validate:"omitempty,max=500"`
	PhoneNumber *string           `json:"phone_number" validate:"omitempty,max=30"`
	SocialLinks map[string]string `json:"social_links" validate:"omitempty,dive,url"`
}

func (p *ProfileUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*p.DisplayName)
	}
	if p.PhotoURL != nil {
		fields["photo_url"] = *p.PhotoURL
	}
	if p.Bio != nil {
		fields["bio"] = strings.TrimSpace(*p.Bio)
	}
	if p.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*p.PhoneNumber)
	}
	if p.SocialLinks != nil {
		fields["social_links"] = p.SocialLinks
	}
	return fields
}

type UserRepo interface {
	// EnsureUser inserts the profile on first sign-in and returns the stored one.
	EnsureUser(ctx context.Context, user *User) (*User, bool, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*User, error)
	UpdatePrivacy(ctx context.Context, id string, settings PrivacySettings) (*User, error)
	AddDeviceToken(ctx context.Context, id, token string) error
	RemoveDeviceToken(ctx context.Context, id, token string) error
	DeviceTokens(ctx context.Context, id string) ([]string, error)
}

// AuthRepo fronts the hosted identity provider.
type AuthRepo interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetProviderUser(ctx context.Context, accessToken string) (*types.UserResponse, error)
	AuthorizeURL(provider, redirectTo string) (string, error)
}
