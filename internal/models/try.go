package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TryCategory string

const (
	CategoryEvent       TryCategory = "event"
	CategoryProject     TryCategory = "project"
	CategoryRecruitment TryCategory = "recruitment"
	CategorySports      TryCategory = "sports"
	CategoryOther       TryCategory = "other"
)

type TryStatus string

const (
	TryStatusOpen      TryStatus = "open"
	TryStatusClosed    TryStatus = "closed"
	TryStatusCompleted TryStatus = "completed"
)

// AdmissionPolicy decides how a join request reaches the approved state.
type AdmissionPolicy string

const (
	AdmissionApproval  AdmissionPolicy = "approval"
	AdmissionFirstCome AdmissionPolicy = "first_come"
)

const MaxTags = 5

// ProgressComplete is the progress value that closes out a try.
const ProgressComplete = 100

type Try struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title" validate:"required,min=1,max=100"`
	Category         TryCategory        `bson:"category" json:"category" validate:"required,oneof=event project recruitment sports other"`
	Description      string             `bson:"description" json:"description" validate:"required,min=1,max=2000"`
	Dates            []string           `bson:"dates" json:"dates" validate:"required,min=1,dive,required"`
	Location         string             `bson:"location" json:"location" validate:"max=200"`
	Capacity         int                `bson:"capacity" json:"capacity" validate:"min=1"`
	Images           []string           `bson:"images" json:"images" validate:"dive,url"`
	OwnerID          string             `bson:"owner_id" json:"owner_id" validate:"required"`
	Status           TryStatus          `bson:"status" json:"status" validate:"oneof=open closed completed"`
	Tags             []string           `bson:"tags" json:"tags" validate:"max=5,dive,min=1,max=30"`
	SeekingCompanion bool               `bson:"seeking_companion" json:"seeking_companion"`
	ParticipantCount int                `bson:"participant_count" json:"participant_count"`
	Progress         int                `bson:"progress" json:"progress" validate:"min=0,max=100"`
	AdmissionPolicy  AdmissionPolicy    `bson:"admission_policy" json:"admission_policy" validate:"oneof=approval first_come"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
	CompletedAt      *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

func (t *Try) BeforeCreate() error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = TryStatusOpen
	}
	if t.AdmissionPolicy == "" {
		t.AdmissionPolicy = AdmissionApproval
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	t.ParticipantCount = 0
	return nil
}

func (t *Try) Sanitize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.Location = strings.TrimSpace(t.Location)
	t.Tags = NormalizeTags(t.Tags)
}

// FirstDate is the date used for range filtering and date-change notices.
func (t *Try) FirstDate() string {
	if len(t.Dates) == 0 {
		return ""
	}
	return t.Dates[0]
}

func (t *Try) IsOwner(userID string) bool {
	return t.OwnerID == userID
}

func (t *Try) SeatsLeft() int {
	if left := t.Capacity - t.ParticipantCount; left > 0 {
		return left
	}
	return 0
}

// NormalizeTags trims, drops empties and removes duplicates, keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// TryUpdate carries the organizer-editable fields. Nil means unchanged.
type TryUpdate struct {
	Title            *string      `json:"title" validate:"omitempty,min=1,max=100"`
	Category         *TryCategory `json:"category" validate:"omitempty,oneof=event project recruitment sports other"`
	Description      *string      `json:"description" validate:"omitempty,min=1,max=2000"`
	Dates            []string     `json:"dates" validate:"omitempty,min=1,dive,required"`
	Location         *string      `json:"location" validate:"omitempty,max=200"`
	Capacity         *int         `json:"capacity" validate:"omitempty,min=1"`
	AddImages        []string     `json:"add_images" validate:"omitempty,dive,url"`
	RemoveImages     []string     `json:"remove_images"`
	Status           *TryStatus   `json:"status" validate:"omitempty,oneof=open closed"`
	Tags             []string     `json:"tags" validate:"omitempty,max=5,dive,min=1,max=30"`
	SeekingCompanion *bool        `json:"seeking_companion"`
	Progress         *int         `json:"progress" validate:"omitempty,min=0,max=100"`
}

// Normalize trims the free-text fields and tags so validation sees the stored values.
func (u *TryUpdate) Normalize() {
	for _, field := range []**string{&u.Title, &u.Description, &u.Location} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
	if u.Tags != nil {
		u.Tags = NormalizeTags(u.Tags)
	}
}

// Completes reports whether the update moves progress to completion.
func (u *TryUpdate) Completes() bool {
	return u.Progress != nil && *u.Progress == ProgressComplete
}

// OnlyProgress reports whether progress is the sole field being changed.
func (u *TryUpdate) OnlyProgress() bool {
	rest := *u
	rest.Progress = nil
	return u.Progress != nil && rest.IsEmpty()
}

func (u *TryUpdate) IsEmpty() bool {
	return u.Title == nil && u.Category == nil && u.Description == nil && u.Dates == nil &&
		u.Location == nil && u.Capacity == nil && len(u.AddImages) == 0 && len(u.RemoveImages) == 0 &&
		u.Status == nil && u.Tags == nil && u.SeekingCompanion == nil && u.Progress == nil
}

// Apply returns the $set document for the update, merging images into current.
func (u *TryUpdate) Apply(current *Try) bson.M {
	set := bson.M{"updated_at": time.Now()}
	if u.Title != nil {
		set["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Description != nil {
		set["description"] = strings.TrimSpace(*u.Description)
	}
	if u.Dates != nil {
		set["dates"] = u.Dates
	}
	if u.Location != nil {
		set["location"] = strings.TrimSpace(*u.Location)
	}
	if u.Capacity != nil {
		set["capacity"] = *u.Capacity
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Tags != nil {
		set["tags"] = NormalizeTags(u.Tags)
	}
	if u.SeekingCompanion != nil {
		set["seeking_companion"] = *u.SeekingCompanion
	}
	if u.Progress != nil {
		set["progress"] = *u.Progress
	}
	if len(u.AddImages) > 0 || len(u.RemoveImages) > 0 {
		set["images"] = mergeImages(current.Images, u.AddImages, u.RemoveImages)
	}
	return set
}

func mergeImages(current, add, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		drop[r] = struct{}{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range [][]string{current, add} {
		for _, img := range list {
			if _, ok := drop[img]; ok {
				continue
			}
			if _, ok := seen[img]; ok {
				continue
			}
			seen[img] = struct{}{}
			out = append(out, img)
		}
	}
	return out
}

// DatesChanged reports whether the update replaces the schedule with a different one.
func (u *TryUpdate) DatesChanged(current *Try) bool {
	if u.Dates == nil {
		return false
	}
	if len(u.Dates) != len(current.Dates) {
		return true
	}
	for i := range u.Dates {
		if u.Dates[i] != current.Dates[i] {
			return true
		}
	}
	return false
}

type TryFilter struct {
	Keyword   string
	Category  TryCategory
	Location  string
	Status    TryStatus
	Tag       string
	OwnerID   string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

type TryRepo interface {
	CreateTry(ctx context.Context, try *Try) (*Try, error)
	GetTry(ctx context.Context, id primitive.ObjectID) (*Try, error)
	ListTries(ctx context.Context, filter TryFilter) ([]*Try, int64, error)
	UpdateTry(ctx context.Context, id primitive.ObjectID, set bson.M) (*Try, error)
	DeleteTry(ctx context.Context, id primitive.ObjectID) error
	ClaimSeat(ctx context.Context, id primitive.ObjectID) (*Try, error)
	ReleaseSeat(ctx context.Context, id primitive.ObjectID) error
	CompleteTry(ctx context.Context, completion *Completion) (*Try, error)
	CountCompletedByOwner(ctx context.Context, ownerID string) (int64, error)
}
