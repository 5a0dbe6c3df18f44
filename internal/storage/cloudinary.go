package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryTag = "tryfield"

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore keeps images on Cloudinary, addressed by public id.
type CloudinaryStore struct {
	api    cloudinaryUploader
	prefix string
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary, prefix string) *CloudinaryStore {
	return &CloudinaryStore{api: &cld.Upload, prefix: strings.Trim(prefix, "/")}
}

// publicID drops the extension; Cloudinary derives the format from the content.
func (s *CloudinaryStore) publicID(objectPath string) string {
	id := strings.TrimSuffix(objectPath, path.Ext(objectPath))
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

func (s *CloudinaryStore) Upload(ctx context.Context, objectPath, _ string, body io.Reader) (string, error) {
	overwrite := false
	res, err := s.api.Upload(ctx, body, uploader.UploadParams{
		PublicID:  s.publicID(objectPath),
		Overwrite: &overwrite,
		Tags:      []string{cloudinaryTag},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", objectPath, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image %s: %s", objectPath, res.Error.Message)
	}
	return res.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, objectPath string) error {
	if _, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: s.publicID(objectPath)}); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", objectPath, err)
	}
	return nil
}
