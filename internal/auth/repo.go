package auth

import (
	"context"
	"strings"

	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// Repository looks up back-office accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// StaticRepository serves the single administrator configured at startup.
type StaticRepository struct {
	user User
}

// NewStaticRepository returns a repository holding one active admin account.
// passwordHash is a bcrypt hash.
func NewStaticRepository(email, name, passwordHash string) *StaticRepository {
	return &StaticRepository{user: User{
		ID:           "1",
		Email:        strings.TrimSpace(email),
		Name:         name,
		Role:         RoleAdmin,
		PasswordHash: passwordHash,
		IsActive:     passwordHash != "",
	}}
}

// FindByEmail matches the configured email case-insensitively.
func (r *StaticRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r.user.Email == "" || !strings.EqualFold(strings.TrimSpace(email), r.user.Email) {
		return nil, shared.ErrInvalidCredentials
	}
	user := r.user
	return &user, nil
}

var _ Repository = (*StaticRepository)(nil)
