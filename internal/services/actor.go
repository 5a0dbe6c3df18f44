package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the verified caller of a service operation.
type Actor struct {
	ID          string
	DisplayName string
	PhotoURL    string
	Admin       bool
}

func (a Actor) valid() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: missing user identity", models.ErrForbidden)
	}
	return nil
}

type Translator interface {
	T(locale, key string, data map[string]any) string
}

const defaultPageLimit = 10

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > max {
		return max
	}
	return limit
}

func tryLink(id primitive.ObjectID) string {
	return "/tries/" + id.Hex()
}

// approvedUserIDs lists users holding an approved seat on the try.
func approvedUserIDs(ctx context.Context, repo models.ParticipationRepo, tryID primitive.ObjectID) ([]string, error) {
	list, err := repo.ListParticipations(ctx, tryID, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

// isMember reports whether userID organizes the try or holds an approved seat on it.
func isMember(ctx context.Context, repo models.ParticipationRepo, try *models.Try, userID string) (bool, error) {
	if try.IsOwner(userID) {
		return true, nil
	}
	p, err := repo.FindActiveParticipation(ctx, try.ID, userID)
	if err != nil {
		if errors.Is(err, models.ErrParticipationNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.Status == models.StatusApproved, nil
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
