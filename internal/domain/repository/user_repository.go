package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-account-api/internal/domain/entity"
)

// ErrNotFound is returned by partial updates that matched no document.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned by Create when the store's unique email
// constraint rejects the insert. It closes the race left open by the
// read-before-write check in the registration flow.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the interface for user-related document-store operations.
//
// Lookup methods return (nil, nil) when no document matches, so callers can
// distinguish "absent" from a store failure.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	UpdatePartial(ctx context.Context, id string, fields map[string]any) error

	// ListPage returns one page of users ordered ascending by name (ties
	// broken by id), optionally narrowed to names starting with prefix and
	// resuming strictly after the document identified by cursorID. The
	// returned cursor is the id to resume from, or "" on the last page.
	ListPage(ctx context.Context, prefix, cursorID string) ([]entity.User, string, error)
}
