package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	SetCurrentRefreshToken(ctx context.Context, userID uuid.UUID, tokenID *uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// User represents a stored user account. PasswordHash is a one-way
// Argon2id PHC string and is never reversible. RefreshTokenID points at
// the user's current refresh session, if any.
type User struct {
	ID             uuid.UUID
	Email          string
	Username       string
	PasswordHash   string
	RefreshTokenID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
