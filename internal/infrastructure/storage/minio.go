package storage

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps avatar files in a MinIO (or any S3-compatible) bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string // public base, e.g. http://localhost:9000
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(bucket) == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	scheme := "http://"
	if useSSL {
		scheme = "https://"
	}
	return &MinioStore{client: client, bucket: bucket, baseURL: scheme + endpoint}, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || exists {
		return err
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *MinioStore) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := path.Join(avatarDir, objectName(file))
	_, err = s.client.PutObject(ctx, s.bucket, key, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + s.bucket + "/" + key, nil
}

func (s *MinioStore) Remove(ctx context.Context, publicPath string) error {
	prefix := s.baseURL + "/" + s.bucket + "/"
	key, ok := strings.CutPrefix(publicPath, prefix)
	if !ok || key == "" {
		return errors.New("url outside the configured bucket: " + publicPath)
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

var _ AvatarStore = (*MinioStore)(nil)
