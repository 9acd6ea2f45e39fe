package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

const searchLimit = 20

type ClassService struct {
	Classes     repo.ClassRepository
	Users       repo.UserRepository
	Enrollments repo.EnrollmentRepository
	Search      ClassSearcher
	Jobs        JobPublisher
	Uploads     ImageUploader
	Audit       *Auditor
	Logger      *logrus.Logger
}

func NewClassService(store repo.Store, searcher ClassSearcher, jobs JobPublisher, uploads ImageUploader, audit *Auditor, logger *logrus.Logger) *ClassService {
	return &ClassService{
		Classes:     store.Classes,
		Users:       store.Users,
		Enrollments: store.Enrollments,
		Search:      searcher,
		Jobs:        jobs,
		Uploads:     uploads,
		Audit:       audit,
		Logger:      logger,
	}
}

type NewClassInput struct {
	Name           string
	Description    string
	Image          string
	Price          float64
	AvailableSeats int
	VideoLink      string
	Chapters       []entity.Chapter
}

// Create files a new class for review under the caller's name.
func (s *ClassService) Create(ctx context.Context, viewer entity.Viewer, in NewClassInput) (*entity.Class, error) {
	if !viewer.Role.CanTeach() {
		return nil, ErrForbidden
	}
	owner, err := s.Users.GetByEmail(ctx, viewer.Email)
	if err != nil {
		return nil, notFound(err, "instructor")
	}
	c := &entity.Class{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Image:           in.Image,
		Price:           in.Price,
		AvailableSeats:  in.AvailableSeats,
		VideoLink:       in.VideoLink,
		InstructorName:  owner.Name,
		InstructorEmail: owner.Email,
		Status:          entity.ClassPending,
		Chapters:        in.Chapters,
	}
	if err := s.Classes.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	s.enqueue(ctx, c.ID, IndexUpsert)
	return c, nil
}

// Update edits an owned class and sends it back to review.
func (s *ClassService) Update(ctx context.Context, viewer entity.Viewer, id string, patch entity.ClassPatch) (*entity.Class, error) {
	c, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(c)
	if err := s.Classes.Update(ctx, c); err != nil {
		return nil, notFound(err, "class")
	}
	if patch.AvailableSeats != nil {
		if err := s.Classes.SetAvailableSeats(ctx, c.ID, *patch.AvailableSeats); err != nil {
			return nil, notFound(err, "class")
		}
	}
	s.enqueue(ctx, c.ID, IndexUpsert)
	return s.reload(ctx, c)
}

// Review approves or denies a pending class.
func (s *ClassService) Review(ctx context.Context, viewer entity.Viewer, id string, to entity.ClassStatus, reason string) (*entity.Class, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	c, err := s.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "class")
	}
	from := c.Status
	if err := c.Review(to, reason); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	switch err := s.Classes.SetStatus(ctx, c.ID, from, c.Status, c.Reason); {
	case errors.Is(err, repo.ErrStale):
		return nil, ErrInvalidTransition
	case err != nil:
		return nil, notFound(err, "class")
	}
	s.Audit.Record(ctx, viewer.Email, ActionClassReviewed, c.ID, map[string]any{
		"from":   string(from),
		"to":     string(to),
		"reason": reason,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
	s.enqueue(ctx, c.ID, IndexUpsert)
	return s.reload(ctx, c)
}

func (s *ClassService) Delete(ctx context.Context, viewer entity.Viewer, id string) error {
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	c, err := s.Classes.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "class")
	}
	if err := s.Classes.Delete(ctx, id); err != nil {
		return notFound(err, "class")
	}
	s.Audit.Record(ctx, viewer.Email, ActionClassDeleted, id, map[string]any{"name": c.Name})
	s.enqueue(ctx, id, IndexDelete)
	return nil
}

// All is the public catalogue. Pending and denied classes are only listed
// through Manage and ByInstructor.
func (s *ClassService) All(ctx context.Context) ([]entity.Class, error) {
	return s.Approved(ctx)
}

// Manage lists every class with chapters for the admin queue.
func (s *ClassService) Manage(ctx context.Context, viewer entity.Viewer) ([]entity.Class, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.Classes.List(ctx, repo.ClassFilter{})
}

func (s *ClassService) Approved(ctx context.Context) ([]entity.Class, error) {
	list, err := s.Classes.List(ctx, repo.ClassFilter{Status: entity.ClassApproved})
	if err != nil {
		return nil, err
	}
	return redactAll(list), nil
}

// ByInstructor lists an instructor's classes to that instructor or an admin.
func (s *ClassService) ByInstructor(ctx context.Context, viewer entity.Viewer, email string) ([]entity.Class, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	return s.Classes.List(ctx, repo.ClassFilter{InstructorEmail: email})
}

// Detail returns one class with chapter videos hidden where the viewer has
// no access. Unapproved classes are only visible to their owner and admins.
func (s *ClassService) Detail(ctx context.Context, viewer entity.Viewer, id string) (*entity.Class, error) {
	c, enrolled, err := s.withAccess(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	out := c.RedactFor(viewer, enrolled)
	return &out, nil
}

// Chapter returns one chapter if the viewer may play it.
func (s *ClassService) Chapter(ctx context.Context, viewer entity.Viewer, id string, idx int) (*entity.Chapter, error) {
	c, enrolled, err := s.withAccess(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(c.Chapters) {
		return nil, fmt.Errorf("chapter %w", ErrNotFound)
	}
	if !c.CanView(viewer, enrolled, idx) {
		if viewer.Anonymous() {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}
	ch := c.Chapters[idx]
	return &ch, nil
}

func (s *ClassService) withAccess(ctx context.Context, viewer entity.Viewer, id string) (*entity.Class, bool, error) {
	c, err := s.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, false, notFound(err, "class")
	}
	if c.Status != entity.ClassApproved && !c.Unrestricted(viewer) {
		return nil, false, fmt.Errorf("class %w", ErrNotFound)
	}
	enrolled := false
	if !viewer.Anonymous() && !c.Unrestricted(viewer) {
		ids, err := repo.EnrolledClassIDs(ctx, s.Enrollments, viewer.Email)
		if err != nil {
			return nil, false, fmt.Errorf("load enrollments: %w", err)
		}
		enrolled = ids[c.ID]
	}
	return c, enrolled, nil
}

// SearchClasses finds approved classes through the search index, falling
// back to the repository when the index is absent or failing.
func (s *ClassService) SearchClasses(ctx context.Context, q string) ([]entity.Class, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.Class{}, nil
	}
	if s.Search != nil {
		ids, err := s.Search.Search(ctx, q, searchLimit)
		if err == nil {
			return s.loadOrdered(ctx, ids)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("class search failed, using repository fallback")
		}
	}
	list, err := s.Classes.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	return redactAll(list), nil
}

func (s *ClassService) loadOrdered(ctx context.Context, ids []string) ([]entity.Class, error) {
	if len(ids) == 0 {
		return []entity.Class{}, nil
	}
	list, err := s.Classes.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Class, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	out := make([]entity.Class, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok && c.Status == entity.ClassApproved {
			out = append(out, c)
		}
	}
	return redactAll(out), nil
}

// UploadImage replaces the thumbnail of an owned class. The class goes
// back to review like any other edit.
func (s *ClassService) UploadImage(ctx context.Context, viewer entity.Viewer, id string, r io.Reader, filename, contentType string) (*entity.Class, error) {
	if s.Uploads == nil {
		return nil, ErrUploadsDisabled
	}
	c, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	url, err := s.Uploads.Upload(ctx, "classes/"+c.ID, filename, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	entity.ClassPatch{Image: &url}.Apply(c)
	if err := s.Classes.Update(ctx, c); err != nil {
		return nil, notFound(err, "class")
	}
	s.enqueue(ctx, c.ID, IndexUpsert)
	return s.reload(ctx, c)
}

// reload re-reads c after a write so the counters in the response are the
// stored ones, not the copy read before the write.
func (s *ClassService) reload(ctx context.Context, c *entity.Class) (*entity.Class, error) {
	fresh, err := s.Classes.GetByID(ctx, c.ID)
	if err != nil {
		return nil, notFound(err, "class")
	}
	return fresh, nil
}

func (s *ClassService) owned(ctx context.Context, viewer entity.Viewer, id string) (*entity.Class, error) {
	c, err := s.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "class")
	}
	if !viewer.Owns(c.InstructorEmail) {
		return nil, ErrForbidden
	}
	return c, nil
}

// enqueue publishes a search index job. Failures are logged only.
func (s *ClassService) enqueue(ctx context.Context, id, op string) {
	enqueueIndex(ctx, s.Jobs, s.Logger, id, op)
}

func enqueueIndex(ctx context.Context, jobs JobPublisher, logger *logrus.Logger, id, op string) {
	if jobs == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := jobs.PublishJSON(pctx, IndexJob{ClassID: id, Op: op}); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"class_id": id, "op": op}).Warn("publish index job failed")
	}
}

// redactAll hides every non-free chapter video for public listings.
func redactAll(list []entity.Class) []entity.Class {
	out := make([]entity.Class, len(list))
	for i, c := range list {
		out[i] = c.RedactFor(entity.Viewer{}, false)
	}
	return out
}
