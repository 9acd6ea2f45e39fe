package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

// Audit action names.
const (
	ActionClassReviewed      = "class.reviewed"
	ActionClassDeleted       = "class.deleted"
	ActionUserRoleChanged    = "user.role_changed"
	ActionUserDeleted        = "user.deleted"
	ActionInstructorMade     = "instructor.approved"
	ActionApplicationRemoved = "instructor.application_removed"
	ActionCheckout           = "checkout.completed"
)

// Auditor records privileged actions. Recording never fails the caller.
type Auditor struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger
}

func NewAuditor(r repo.AuditRepository, logger *logrus.Logger) *Auditor {
	return &Auditor{Repo: r, Logger: logger}
}

func (a *Auditor) Record(ctx context.Context, actor, action, subject string, metadata map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	e := &entity.AuditEntry{ActorEmail: actor, Action: action, Subject: subject, Metadata: metadata}
	if err := a.Repo.Record(ctx, e); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithFields(logrus.Fields{"action": action, "subject": subject}).Warn("audit record failed")
	}
}

// Recent returns the latest entries, newest first. Admins only.
func (a *Auditor) Recent(ctx context.Context, viewer entity.Viewer, limit int) ([]entity.AuditEntry, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	if a == nil || a.Repo == nil {
		return []entity.AuditEntry{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return a.Repo.Recent(ctx, limit)
}
