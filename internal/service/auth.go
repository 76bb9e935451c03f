package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// RegisterParams contains parameters to register a new user.
type RegisterParams struct {
	Email    string
	Username string
	Password string
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// Auth composes the password hasher, access token manager and session
// service to implement register, login and logout.
type Auth struct {
	userStore model.UserStore
	hasher    PasswordHasher
	tokens    model.AccessTokenManager
	sessions  *Session
	logger    *logger.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(
	userStore model.UserStore,
	hasher PasswordHasher,
	tokens model.AccessTokenManager,
	sessions *Session,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore: userStore,
		hasher:    hasher,
		tokens:    tokens,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register creates a user account, issues one refresh session and mints
// one access token. A taken email or username is
// model.ErrDuplicateIdentity. If session issuance fails after the user
// row was written, the user row is not rolled back; the error is
// reported to the caller.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email,
		"username", params.Username)

	if _, err := a.userStore.GetByEmail(ctx, params.Email); err == nil {
		a.logger.Info("Auth service: email already taken",
			"email", params.Email)
		return AuthResult{}, model.ErrDuplicateIdentity
	} else if !errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if _, err := a.userStore.GetByUsername(ctx, params.Username); err == nil {
		a.logger.Info("Auth service: username already taken",
			"username", params.Username)
		return AuthResult{}, model.ErrDuplicateIdentity
	} else if !errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	passwordHash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateIdentity) {
			return AuthResult{}, model.ErrDuplicateIdentity
		}
		return AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	refresh, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue refresh session: %w", err)
	}

	access, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID,
		"username", user.Username)

	return AuthResult{User: user, AccessToken: access, RefreshToken: refresh.Token}, nil
}

// Login verifies the password and mints a fresh access token. The
// refresh session is untouched. An unknown login and a wrong password
// return the identical model.ErrInvalidCredentials so neither case
// leaks which factor failed.
func (a *Auth) Login(ctx context.Context, login, password string) (AuthResult, error) {
	a.logger.Debug("Auth service: starting user login",
		"login", login)

	user, err := a.findByLogin(ctx, login)
	if errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := a.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		a.logger.Info("Auth service: login failed",
			"login", login)
		return AuthResult{}, model.ErrInvalidCredentials
	}

	access, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return AuthResult{User: user, AccessToken: access, RefreshToken: ""}, nil
}

// Refresh rotates the presented refresh session and mints a fresh
// access token. An unknown, revoked or expired refresh token is
// model.ErrInvalidToken.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return AuthResult{}, model.ErrInvalidToken
	}

	fresh, err := a.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := a.userStore.GetByID(ctx, fresh.UserID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	access, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	return AuthResult{User: user, AccessToken: access, RefreshToken: fresh.Token}, nil
}

// Logout hard-deletes the refresh session resolved from the presented
// token. The access token keeps working until it expires naturally. A
// second logout with the same token is model.ErrInvalidToken.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return model.ErrInvalidToken
	}
	return a.sessions.Logout(ctx, refreshToken)
}

// ChangePassword replaces the account password after re-verifying the
// current one.
func (a *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := a.hasher.Verify(user.PasswordHash, current)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.ErrInvalidCredentials
	}

	passwordHash, err := a.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePasswordHash(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	a.logger.Info("Auth service: password changed",
		"user_id", userID)

	return nil
}

func (a *Auth) findByLogin(ctx context.Context, login string) (model.User, error) {
	user, err := a.userStore.GetByEmail(ctx, login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, err
	}
	return a.userStore.GetByUsername(ctx, login)
}
