package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tryfield/internal/models"
)

const MaxUploadBytes = 10 << 20

// Upload folders, one per owning entity type.
const (
	TriesFolder   = "tries"
	AvatarsFolder = "avatars"
	ChatFolder    = "chat"
)

// ObjectStore keeps blobs and hands back durable public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

type UploadService struct {
	store ObjectStore
}

func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store}
}

// ObjectPath namespaces an upload by entity type and owner.
func ObjectPath(folder, ownerID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", folder, ownerID, uuid.NewString(), ext)
}

func (us *UploadService) UploadImage(ctx context.Context, actor Actor, folder, filename, contentType string, size int64, body io.Reader) (string, error) {
	if err := actor.valid(); err != nil {
		return "", err
	}
	switch folder {
	case TriesFolder, AvatarsFolder, ChatFolder:
	default:
		return "", fmt.Errorf("%w: unknown upload kind %q", models.ErrInvalidInput, folder)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: only images can be uploaded", models.ErrInvalidInput)
	}
	if size <= 0 || size > MaxUploadBytes {
		return "", fmt.Errorf("%w: image must be between 1 byte and %d bytes", models.ErrInvalidInput, MaxUploadBytes)
	}
	url, err := us.store.Upload(ctx, ObjectPath(folder, actor.ID, filename), contentType, io.LimitReader(body, MaxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
