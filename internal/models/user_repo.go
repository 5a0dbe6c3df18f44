package models

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) EnsureUser(ctx context.Context, user *User) (*User, bool, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, false, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now()
	privacy := DefaultPrivacySettings()
	update := bson.M{"$setOnInsert": bson.M{
		"display_name": user.DisplayName,
		"email":        user.Email,
		"photo_url":    user.PhotoURL,
		"bio":          "",
		"role":         RoleUser,
		"privacy":      privacy,
		"rating_summary": RatingSummary{
			Buckets: map[string]int{},
		},
		"created_at": now,
		"updated_at": now,
	}}
	opts := options.Update().SetUpsert(true)
	res, err := col.UpdateOne(ctx, bson.M{"_id": user.ID}, update, opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("error provisioning user: %w", err)
	}
	created := err == nil && res.UpsertedCount > 0

	stored, err := mdb.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var user User
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*User, error) {
	fields["updated_at"] = time.Now()
	return mdb.updateUser(ctx, id, bson.M{"$set": fields})
}

func (mdb *MongodbRepo) UpdatePrivacy(ctx context.Context, id string, settings PrivacySettings) (*User, error) {
	return mdb.updateUser(ctx, id, bson.M{"$set": bson.M{
		"privacy":    settings.Normalize(),
		"updated_at": time.Now(),
	}})
}

func (mdb *MongodbRepo) updateUser(ctx context.Context, id string, update bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user User
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) AddDeviceToken(ctx context.Context, id, token string) error {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"device_tokens": token}})
	if err != nil {
		return fmt.Errorf("error registering device token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (mdb *MongodbRepo) RemoveDeviceToken(ctx context.Context, id, token string) error {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"device_tokens": token}}); err != nil {
		return fmt.Errorf("error removing device token: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) DeviceTokens(ctx context.Context, id string) ([]string, error) {
	user, err := mdb.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.DeviceTokens, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) GetProviderUser(ctx context.Context, accessToken string) (*types.UserResponse, error) {
	resp, err := su.supabaseClient.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity provider user: %w", err)
	}
	return resp, nil
}

// AuthorizeURL builds the hosted sign-in URL for a federated provider.
func (su *SupabaseRepo) AuthorizeURL(provider, redirectTo string) (string, error) {
	if su.url == "" {
		return "", fmt.Errorf("identity provider URL is not configured")
	}
	if provider == "" {
		provider = "google"
	}
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return strings.TrimRight(su.url, "/") + "/auth/v1/authorize?" + q.Encode(), nil
}
