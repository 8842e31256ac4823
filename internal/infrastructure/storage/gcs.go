package storage

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"strings"

	gcstorage "cloud.google.com/go/storage"

	"github.com/oksasatya/user-account-api/pkg/helpers"
)

// GCSStore keeps avatar files in a Google Cloud Storage bucket with public
// read access; stored paths are full object URLs.
type GCSStore struct {
	client *gcstorage.Client
	bucket string
}

func NewGCSStore(client *gcstorage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	objectPath := path.Join(avatarDir, objectName(file))
	contentType := file.Header.Get("Content-Type")
	return helpers.UploadObject(ctx, s.client, s.bucket, objectPath, contentType, src)
}

func (s *GCSStore) Remove(ctx context.Context, publicPath string) error {
	prefix := helpers.PublicURL(s.bucket, "")
	objectPath, ok := strings.CutPrefix(publicPath, prefix)
	if !ok || objectPath == "" {
		return errors.New("url outside the configured bucket: " + publicPath)
	}
	return s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
}

var _ AvatarStore = (*GCSStore)(nil)
