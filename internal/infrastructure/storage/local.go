package storage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix the HTTP layer serves uploaded files from.
const PublicPrefix = "/uploads"

const avatarDir = "avatars"

// LocalStore keeps avatar files on the serving file system under root,
// exposed unauthenticated at PublicPrefix by the static route.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, avatarDir), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Store(_ context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := objectName(file)
	dst, err := os.Create(filepath.Join(s.root, avatarDir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path.Join(PublicPrefix, avatarDir, name), nil
}

func (s *LocalStore) Remove(_ context.Context, publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || strings.Contains(rel, "..") {
		return errors.New("path outside the upload prefix: " + publicPath)
	}
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}

var _ AvatarStore = (*LocalStore)(nil)
