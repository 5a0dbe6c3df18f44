package storage

import (
	"context"
	"io"
)

// ObjectStore keeps uploaded blobs and returns their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

var (
	_ ObjectStore = (*SupabaseStore)(nil)
	_ ObjectStore = (*CloudinaryStore)(nil)
)
