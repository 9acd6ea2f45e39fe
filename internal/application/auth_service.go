package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// AuthService handles signup, login and live role lookups.
type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	PhotoURL string
	Phone    string
	Address  string
	Gender   string
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *entity.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a plain user account. The role is always user.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         entity.RoleUser,
		PhotoURL:     in.PhotoURL,
		Phone:        in.Phone,
		Address:      in.Address,
		Gender:       in.Gender,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the password and issues a token carrying the stored role.
// Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.Generate(u.Email, string(u.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("generate access token failed")
		}
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// CurrentRole re-reads the stored role for email.
func (s *AuthService) CurrentRole(ctx context.Context, email string) (entity.Role, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
