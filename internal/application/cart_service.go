package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type CartService struct {
	Cart        repo.CartRepository
	Classes     repo.ClassRepository
	Enrollments repo.EnrollmentRepository
	Logger      *logrus.Logger
}

func NewCartService(store repo.Store, logger *logrus.Logger) *CartService {
	return &CartService{Cart: store.Cart, Classes: store.Classes, Enrollments: store.Enrollments, Logger: logger}
}

// Add puts an approved class the caller does not own yet into their cart.
func (s *CartService) Add(ctx context.Context, viewer entity.Viewer, classID string) (*entity.CartItem, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	c, err := s.Classes.GetByID(ctx, classID)
	if err != nil {
		return nil, notFound(err, "class")
	}
	if c.Status != entity.ClassApproved {
		return nil, ErrClassNotAvailable
	}
	enrolled, err := repo.EnrolledClassIDs(ctx, s.Enrollments, viewer.Email)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	if enrolled[classID] {
		return nil, ErrAlreadyEnrolled
	}
	item := &entity.CartItem{ClassID: classID, UserEmail: viewer.Email}
	if err := s.Cart.Add(ctx, item); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyInCart
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

// Item returns the caller's cart entry for classID.
func (s *CartService) Item(ctx context.Context, viewer entity.Viewer, classID string) (*entity.CartItem, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	item, err := s.Cart.Get(ctx, viewer.Email, classID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

// ListClasses lists the classes in a cart, to its owner or an admin.
func (s *CartService) ListClasses(ctx context.Context, viewer entity.Viewer, email string) ([]entity.Class, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	items, err := s.Cart.ListByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []entity.Class{}, nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ClassID)
	}
	list, err := s.Classes.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return redactAll(list), nil
}

// Remove deletes one of the caller's own cart entries.
func (s *CartService) Remove(ctx context.Context, viewer entity.Viewer, classID string) error {
	if viewer.Anonymous() {
		return ErrUnauthenticated
	}
	if err := s.Cart.Remove(ctx, viewer.Email, classID); err != nil {
		return notFound(err, "cart item")
	}
	return nil
}
