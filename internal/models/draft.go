package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const draftKeyPrefix = "tryfield_draft:"

type DraftImage struct {
	Preview string `json:"preview" validate:"required"`
	Name    string `json:"name" validate:"max=255"`
	Type    string `json:"type" validate:"max=100"`
}

// Draft is an unsubmitted try-creation form.
type Draft struct {
	Title         string       `json:"title" validate:"max=100"`
	Description   string       `json:"description" validate:"max=2000"`
	NeedSupporter bool         `json:"needSupporter"`
	Tags          []string     `json:"tags" validate:"max=5"`
	Images        []DraftImage `json:"images" validate:"max=10,dive"`
	LastModified  time.Time    `json:"lastModified"`
}

type DraftRepo interface {
	SaveDraft(ctx context.Context, userID string, draft *Draft, ttl time.Duration) error
	LoadDraft(ctx context.Context, userID string) (*Draft, error)
	DeleteDraft(ctx context.Context, userID string) error
	DraftExists(ctx context.Context, userID string) (bool, error)
}

func draftKey(userID string) string {
	return draftKeyPrefix + userID
}

func (r *RedisRepo) SaveDraft(ctx context.Context, userID string, draft *Draft, ttl time.Duration) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := r.redisClient.Set(ctx, draftKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (r *RedisRepo) LoadDraft(ctx context.Context, userID string) (*Draft, error) {
	payload, err := r.redisClient.Get(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	var draft Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

func (r *RedisRepo) DeleteDraft(ctx context.Context, userID string) error {
	if err := r.redisClient.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (r *RedisRepo) DraftExists(ctx context.Context, userID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, draftKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check draft: %w", err)
	}
	return n > 0, nil
}
