package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SearchByName(ctx context.Context, name string) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	EmailExists(ctx context.Context, email string) (bool, error)
	CPFExists(ctx context.Context, cpf string) (bool, error)

	// SetRefreshToken unconditionally replaces the stored refresh token
	// (login path).
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// RotateRefreshToken swaps oldToken for newToken only if oldToken is
	// still the stored value; returns domain.ErrRefreshTokenMismatch when a
	// concurrent rotation got there first.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error
}

type Repositories struct {
	User UserRepository
}
