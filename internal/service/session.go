package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

const (
	// RefreshTTL is the lifetime of a refresh session.
	RefreshTTL = 7 * 24 * time.Hour

	// refreshTokenBytes gives 512 bits of entropy per token.
	refreshTokenBytes = 64
)

// Session governs the lifecycle of persisted refresh sessions: issuance,
// lookup, rotation, revocation and deletion. Refresh tokens are opaque
// random values; validity is decided entirely by the stored record.
type Session struct {
	store  model.RefreshTokenStore
	users  model.UserStore
	logger *logger.Logger
	now    func() time.Time
}

// NewSession creates a new Session service.
func NewSession(store model.RefreshTokenStore, users model.UserStore, logger *logger.Logger) *Session {
	return &Session{
		store:  store,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Issue generates an opaque refresh token, persists the session and
// links it as the user's current one. The prior session, if any, is
// unlinked but not revoked here; rotation and logout handle that.
func (s *Session) Issue(ctx context.Context, userID uuid.UUID) (model.RefreshToken, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	rt := model.RefreshToken{
		ID:        uuid.New(),
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(RefreshTTL),
		RevokedAt: nil,
	}

	if err := s.store.Create(ctx, rt); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to persist refresh session: %w", err)
	}

	if err := s.users.SetCurrentRefreshToken(ctx, userID, &rt.ID); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to link refresh session: %w", err)
	}

	s.logger.Debug("Session service: refresh session issued",
		"user_id", userID,
		"expires_at", rt.ExpiresAt)

	return rt, nil
}

// FindByToken looks up a session by its opaque token value. A miss is
// model.ErrNotFound, a normal outcome rather than a failure.
func (s *Session) FindByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	rt, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh session: %w", err)
	}
	return rt, nil
}

// Revoke marks the session revoked. Calling it twice is harmless.
func (s *Session) Revoke(ctx context.Context, session model.RefreshToken) error {
	if err := s.store.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh session: %w", err)
	}
	return nil
}

// Logout resolves the presented token and hard-deletes its session. A
// token that does not resolve, including one already deleted by a prior
// logout, is model.ErrInvalidToken.
func (s *Session) Logout(ctx context.Context, token string) error {
	rt, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("failed to get refresh session: %w", err)
	}

	if err := s.store.Delete(ctx, rt.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidToken
		}
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}

	s.logger.Info("Session service: refresh session deleted",
		"user_id", rt.UserID)

	return nil
}

// Rotate exchanges an active refresh session for a new one: the old
// session is revoked and a fresh token is issued and linked. An unknown,
// revoked or expired token is model.ErrInvalidToken.
func (s *Session) Rotate(ctx context.Context, token string) (model.RefreshToken, error) {
	rt, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.RefreshToken{}, model.ErrInvalidToken
	}
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh session: %w", err)
	}

	if !rt.IsActive(s.now()) {
		return model.RefreshToken{}, model.ErrInvalidToken
	}

	if err := s.store.Revoke(ctx, rt.ID); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to revoke old refresh session: %w", err)
	}

	fresh, err := s.Issue(ctx, rt.UserID)
	if err != nil {
		return model.RefreshToken{}, err
	}

	s.logger.Debug("Session service: refresh session rotated",
		"user_id", rt.UserID)

	return fresh, nil
}

// CleanupExpired removes sessions whose expiry has passed. Intended for
// periodic housekeeping; validity checks never depend on it.
func (s *Session) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh sessions: %w", err)
	}
	return removed, nil
}
