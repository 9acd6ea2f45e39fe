package repository

import (
	"context"
	"errors"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// ErrSoldOut is returned by ReserveSeat when no seat is left.
	ErrSoldOut = errors.New("no seats available")
	// ErrStale is returned by conditional writes whose precondition no longer holds.
	ErrStale = errors.New("stale write")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetManyByEmail(ctx context.Context, emails []string) ([]entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
}

// ClassFilter narrows List. Zero values match everything.
type ClassFilter struct {
	Status          entity.ClassStatus
	InstructorEmail string
}

type ClassRepository interface {
	Create(ctx context.Context, c *entity.Class) error
	GetByID(ctx context.Context, id string) (*entity.Class, error)
	GetMany(ctx context.Context, ids []string) ([]entity.Class, error)
	List(ctx context.Context, f ClassFilter) ([]entity.Class, error)
	// Update writes the editable fields and the review state. It never
	// touches availableSeats or totalEnrolled.
	Update(ctx context.Context, c *entity.Class) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f ClassFilter) (int64, error)

	// SetStatus moves a class from one review state to another and returns
	// ErrStale when the stored status is no longer from.
	SetStatus(ctx context.Context, id string, from, to entity.ClassStatus, reason string) error
	SetAvailableSeats(ctx context.Context, id string, n int) error

	// ReserveSeat atomically takes one seat and counts one enrollment.
	ReserveSeat(ctx context.Context, id string) error
	// ReleaseSeat undoes ReserveSeat.
	ReleaseSeat(ctx context.Context, id string) error
	SetTotalEnrolled(ctx context.Context, id string, n int) error

	Popular(ctx context.Context, limit int) ([]entity.Class, error)
	PopularInstructors(ctx context.Context, limit int) ([]entity.InstructorRank, error)
	Search(ctx context.Context, q string, limit int) ([]entity.Class, error)
}

type CartRepository interface {
	Add(ctx context.Context, item *entity.CartItem) error
	Get(ctx context.Context, userEmail, classID string) (*entity.CartItem, error)
	ListByUser(ctx context.Context, userEmail string) ([]entity.CartItem, error)
	Remove(ctx context.Context, userEmail, classID string) error
	RemoveMany(ctx context.Context, userEmail string, classIDs []string) (int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByTransactionID(ctx context.Context, txID string) (*entity.Payment, error)
	ListByUser(ctx context.Context, userEmail string) ([]entity.Payment, error)
	CountByUser(ctx context.Context, userEmail string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *entity.Enrollment) error
	ListByUser(ctx context.Context, userEmail string) ([]entity.Enrollment, error)
	CountEnrolledIn(ctx context.Context, classID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *entity.InstructorApplication) error
	GetByID(ctx context.Context, id string) (*entity.InstructorApplication, error)
	GetByEmail(ctx context.Context, email string) (*entity.InstructorApplication, error)
	List(ctx context.Context) ([]entity.InstructorApplication, error)
	Delete(ctx context.Context, id string) error
}

type AuditRepository interface {
	Record(ctx context.Context, e *entity.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]entity.AuditEntry, error)
}

// Store bundles the six marketplace collections.
type Store struct {
	Users        UserRepository
	Classes      ClassRepository
	Cart         CartRepository
	Payments     PaymentRepository
	Enrollments  EnrollmentRepository
	Applications ApplicationRepository
}

// EnrolledClassIDs flattens a user's enrollments into a set of class ids.
func EnrolledClassIDs(ctx context.Context, r EnrollmentRepository, userEmail string) (map[string]bool, error) {
	list, err := r.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, e := range list {
		for _, id := range e.ClassIDs {
			out[id] = true
		}
	}
	return out, nil
}
