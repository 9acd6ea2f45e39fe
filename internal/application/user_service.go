package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type UserService struct {
	Users   repo.UserRepository
	Uploads ImageUploader
	Audit   *Auditor
	Logger  *logrus.Logger
}

func NewUserService(users repo.UserRepository, uploads ImageUploader, audit *Auditor, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Uploads: uploads, Audit: audit, Logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.Users.List(ctx)
}

func (s *UserService) Instructors(ctx context.Context) ([]entity.User, error) {
	return s.Users.ListByRole(ctx, entity.RoleInstructor)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// GetByEmail returns a profile to its owner or an admin.
func (s *UserService) GetByEmail(ctx context.Context, viewer entity.Viewer, email string) (*entity.User, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateProfile applies the allow-listed fields. Only admins may change a
// role; a non-admin request carrying one is refused before anything is
// written.
func (s *UserService) UpdateProfile(ctx context.Context, viewer entity.Viewer, id string, patch entity.ProfilePatch) (*entity.User, error) {
	if patch.Role != nil && !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !viewer.Owns(u.Email) {
		return nil, ErrForbidden
	}
	patch.Apply(u)
	prevRole := u.Role
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if u.Role != prevRole {
		s.Audit.Record(ctx, viewer.Email, ActionUserRoleChanged, u.Email, map[string]any{
			"from": string(prevRole),
			"to":   string(u.Role),
		})
	}
	return u, nil
}

// Delete removes an account. Admins only.
func (s *UserService) Delete(ctx context.Context, viewer entity.Viewer, id string) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "user")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("user %w", ErrNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.Audit.Record(ctx, viewer.Email, ActionUserDeleted, u.Email, map[string]any{"id": id})
	return nil
}

// UploadPhoto stores a new profile picture for the caller.
func (s *UserService) UploadPhoto(ctx context.Context, viewer entity.Viewer, r io.Reader, filename, contentType string) (*entity.User, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if s.Uploads == nil {
		return nil, ErrUploadsDisabled
	}
	u, err := s.Users.GetByEmail(ctx, viewer.Email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	url, err := s.Uploads.Upload(ctx, "avatars/"+u.ID, filename, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("photo upload failed")
		}
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	u.PhotoURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
