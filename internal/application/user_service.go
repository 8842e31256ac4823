package application

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-api/internal/domain/entity"
	repo "github.com/oksasatya/user-account-api/internal/domain/repository"
	"github.com/oksasatya/user-account-api/internal/infrastructure/storage"
	"github.com/oksasatya/user-account-api/pkg/helpers"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNothingToUpdate    = errors.New("nothing to update")
)

// Service orchestrates the repository, the password hasher and the avatar
// store per request. Each call is stateless and single-shot; collaborator
// calls run strictly sequentially except for old-avatar reclamation, which is
// fired and forgotten.
type Service struct {
	Repo    repo.UserRepository
	Avatars storage.AvatarStore
	Logger  *logrus.Logger
}

func NewService(r repo.UserRepository, avatars storage.AvatarStore, logger *logrus.Logger) *Service {
	return &Service{Repo: r, Avatars: avatars, Logger: logger}
}

// Register creates a new account. Email uniqueness is checked up front for
// the friendly conflict error and enforced by the store's unique index.
func (s *Service) Register(ctx context.Context, name, email, password string, avatar *multipart.FileHeader) (*entity.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var avatarURL *string
	if avatar != nil {
		url, err := s.Avatars.Store(ctx, avatar)
		if err != nil {
			return nil, err
		}
		avatarURL = &url
	}

	u := &entity.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		AvatarURL: avatarURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// The unique index catches registrations that slipped past the
		// lookup above in a concurrent race.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login returns the matching user. A missing account and a wrong password
// both yield ErrInvalidCredentials so the response never reveals which
// field was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// List returns one page of users. A blank search term means no filter.
func (s *Service) List(ctx context.Context, search, cursor string) ([]entity.User, string, error) {
	if isBlank(search) {
		search = ""
	}
	return s.Repo.ListPage(ctx, search, cursor)
}

func (s *Service) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Update persists a partial field set built from whichever of name and avatar
// were supplied, then re-reads and returns the refreshed record. When a new
// avatar supersedes an old one, the old file is deleted best-effort in the
// background; its outcome is logged and never fails the request.
func (s *Service) Update(ctx context.Context, id, name string, avatar *multipart.FileHeader) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]any{}
	if name != "" {
		fields["name"] = name
	}
	if avatar != nil {
		url, err := s.Avatars.Store(ctx, avatar)
		if err != nil {
			return nil, err
		}
		fields["avatarUrl"] = url
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.Repo.UpdatePartial(ctx, id, fields); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// The superseded file is reclaimed only once the record points at the
	// new one.
	if _, replaced := fields["avatarUrl"]; replaced && u.AvatarURL != nil {
		go s.removeOldAvatar(*u.AvatarURL)
	}

	refreshed, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, ErrUserNotFound
	}
	return refreshed, nil
}

func (s *Service) removeOldAvatar(path string) {
	// Detached from the request: cleanup must not block or fail the response.
	if err := s.Avatars.Remove(context.Background(), path); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("path", path).Warn("failed to remove old avatar")
		}
		return
	}
	if s.Logger != nil {
		s.Logger.WithField("path", path).Info("old avatar removed")
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
