package storage

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AvatarStore persists uploaded avatar files and reclaims superseded ones.
//
// Store writes the upload under the backend's public prefix and returns the
// path (or URL) to persist on the user record. Remove deletes the file behind
// a previously returned path; callers treat removal as best-effort cleanup.
type AvatarStore interface {
	Store(ctx context.Context, file *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

// objectName builds a collision-free file name for an upload, keeping the
// original extension. Naming is this layer's job; the handlers never see it.
func objectName(file *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	return uuid.NewString() + ext
}
