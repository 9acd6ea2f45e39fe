package application

import (
	"errors"
	"fmt"

	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden access")
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAlreadyApplied      = errors.New("already applied")
	ErrAlreadyInCart       = errors.New("class already in cart")
	ErrAlreadyEnrolled     = errors.New("already enrolled in class")
	ErrCheckoutInProgress  = errors.New("checkout already in progress")
	ErrSoldOut             = errors.New("no seats available")
	ErrInvalidTransition   = errors.New("invalid class status transition")
	ErrClassNotAvailable   = errors.New("class is not available for purchase")
	ErrEmptyCheckout       = errors.New("no classes to pay for")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrUploadsDisabled     = errors.New("uploads are not configured")
)

// notFound maps a repository miss onto ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
