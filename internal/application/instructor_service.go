package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

const ApplicationPending = "pending"

type InstructorService struct {
	Users        repo.UserRepository
	Applications repo.ApplicationRepository
	Audit        *Auditor
	Logger       *logrus.Logger
}

func NewInstructorService(users repo.UserRepository, apps repo.ApplicationRepository, audit *Auditor, logger *logrus.Logger) *InstructorService {
	return &InstructorService{Users: users, Applications: apps, Audit: audit, Logger: logger}
}

type ApplyInput struct {
	Name       string
	PhotoURL   string
	Experience string
	Skills     string
	About      string
	DemoVideo  string
}

// Apply files the caller's instructor application. One per email.
func (s *InstructorService) Apply(ctx context.Context, viewer entity.Viewer, in ApplyInput) (*entity.InstructorApplication, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Applications.GetByEmail(ctx, viewer.Email); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load application: %w", err)
	}
	a := &entity.InstructorApplication{
		Name:       in.Name,
		Email:      viewer.Email,
		PhotoURL:   in.PhotoURL,
		Experience: in.Experience,
		Skills:     in.Skills,
		About:      in.About,
		DemoVideo:  in.DemoVideo,
		Status:     ApplicationPending,
		AppliedAt:  time.Now().UTC(),
	}
	if err := s.Applications.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return a, nil
}

// GetByEmail returns an application to its author or an admin.
func (s *InstructorService) GetByEmail(ctx context.Context, viewer entity.Viewer, email string) (*entity.InstructorApplication, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	a, err := s.Applications.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "application")
	}
	return a, nil
}

func (s *InstructorService) List(ctx context.Context, viewer entity.Viewer) ([]entity.InstructorApplication, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.Applications.List(ctx)
}

// Approve promotes the user to instructor and consumes their application.
func (s *InstructorService) Approve(ctx context.Context, viewer entity.Viewer, email string) (*entity.User, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	prev := u.Role
	if u.Role != entity.RoleAdmin {
		u.Role = entity.RoleInstructor
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if a, err := s.Applications.GetByEmail(ctx, email); err == nil {
		if err := s.Applications.Delete(ctx, a.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Warn("consume application failed")
		}
	}
	s.Audit.Record(ctx, viewer.Email, ActionInstructorMade, email, map[string]any{
		"from": string(prev),
		"to":   string(u.Role),
	})
	return u, nil
}

// Reject drops an application without changing the applicant's role.
func (s *InstructorService) Reject(ctx context.Context, viewer entity.Viewer, id string) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	a, err := s.Applications.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "application")
	}
	if err := s.Applications.Delete(ctx, id); err != nil {
		return notFound(err, "application")
	}
	s.Audit.Record(ctx, viewer.Email, ActionApplicationRemoved, a.Email, map[string]any{"id": id})
	return nil
}
