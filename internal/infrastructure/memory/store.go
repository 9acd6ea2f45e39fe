// Package memory implements the marketplace repositories in process memory.
// It mirrors the unique constraints of the MongoDB indexes so behaviour is
// identical in tests and in APP_STORAGE=memory mode.
package memory

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

func newID() string { return primitive.NewObjectID().Hex() }

// NewStore returns a fresh, empty set of repositories.
func NewStore() repo.Store {
	users := &UserRepository{}
	return repo.Store{
		Users:        users,
		Classes:      &ClassRepository{users: users},
		Cart:         &CartRepository{},
		Payments:     &PaymentRepository{},
		Enrollments:  &EnrollmentRepository{},
		Applications: &ApplicationRepository{},
	}
}
