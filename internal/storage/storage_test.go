package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	storage_go "github.com/supabase-community/storage-go"
)

type fakeBucket struct {
	uploaded map[string]string
	opts     storage_go.FileOptions
	removed  []string
	err      error
}

func (f *fakeBucket) UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	if f.err != nil {
		return storage_go.FileUploadResponse{}, f.err
	}
	b, _ := io.ReadAll(data)
	if f.uploaded == nil {
		f.uploaded = map[string]string{}
	}
	f.uploaded[bucketID+"/"+relativePath] = string(b)
	if len(fileOptions) > 0 {
		f.opts = fileOptions[0]
	}
	return storage_go.FileUploadResponse{}, nil
}

func (f *fakeBucket) GetPublicUrl(bucketID, filePath string, _ ...storage_go.UrlOptions) storage_go.SignedUrlResponse {
	return storage_go.SignedUrlResponse{SignedURL: "https://project.supabase.co/storage/v1/object/public/" + bucketID + "/" + filePath}
}

func (f *fakeBucket) RemoveFile(_ string, paths []string) ([]storage_go.FileUploadResponse, error) {
	f.removed = append(f.removed, paths...)
	return nil, nil
}

var (
	_ ObjectStore = (*SupabaseStore)(nil)
	_ ObjectStore = (*CloudinaryStore)(nil)
)

func TestSupabaseStore(t *testing.T) {
	bucket := &fakeBucket{}
	s := &SupabaseStore{client: bucket, bucket: "images"}
	ctx := context.Background()

	url, err := s.Upload(ctx, "tries/u1/x.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://project.supabase.co/storage/v1/object/public/images/tries/u1/x.png" {
		t.Errorf("url = %s", url)
	}
	if bucket.uploaded["images/tries/u1/x.png"] != "png" {
		t.Errorf("uploaded = %v", bucket.uploaded)
	}
	if bucket.opts.ContentType == nil || *bucket.opts.ContentType != "image/png" {
		t.Error("content type not forwarded")
	}
	if err := s.Delete(ctx, "tries/u1/x.png"); err != nil || len(bucket.removed) != 1 {
		t.Errorf("delete: %v %v", err, bucket.removed)
	}

	bucket.err = errors.New("quota")
	if _, err := s.Upload(ctx, "tries/u1/y.png", "image/png", strings.NewReader("png")); err == nil {
		t.Error("expected upload error")
	}
}

type fakeCloudinary struct {
	params  uploader.UploadParams
	deleted string
}

func (f *fakeCloudinary) Upload(_ context.Context, _ interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = p
	return &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/" + p.PublicID + ".png"}, nil
}

func (f *fakeCloudinary) Destroy(_ context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.deleted = p.PublicID
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func TestCloudinaryStore(t *testing.T) {
	api := &fakeCloudinary{}
	s := &CloudinaryStore{api: api, prefix: "tryfield"}
	ctx := context.Background()

	url, err := s.Upload(ctx, "avatars/u1/abc.jpg", "image/jpeg", strings.NewReader("jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if api.params.PublicID != "tryfield/avatars/u1/abc" {
		t.Errorf("public id = %s", api.params.PublicID)
	}
	if !strings.HasPrefix(url, "https://res.cloudinary.com/") {
		t.Errorf("url = %s", url)
	}
	if err := s.Delete(ctx, "avatars/u1/abc.jpg"); err != nil || api.deleted != "tryfield/avatars/u1/abc" {
		t.Errorf("delete: %v %s", err, api.deleted)
	}
}
