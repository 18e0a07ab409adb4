package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Authenticate validates email/password credentials and returns the admin
// principal for the session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Admin, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Admin{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive || user.Role != RoleAdmin {
		return Admin{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Admin{}, shared.ErrInvalidCredentials
	}
	return user.principal(s.now().UTC()), nil
}

// Resolve reloads the principal stored in a session. A session pointing at
// an account that no longer exists or was disabled resolves to an error.
func (s *Service) Resolve(ctx context.Context, email string, loginAt time.Time) (Admin, error) {
	if email == "" {
		return Admin{}, shared.ErrInvalidCredentials
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || !user.IsActive || user.Role != RoleAdmin {
		return Admin{}, shared.ErrInvalidCredentials
	}
	return user.principal(loginAt), nil
}
