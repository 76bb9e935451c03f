package model

import "github.com/google/uuid"

// AccessTokenManager mints and validates short-lived signed access
// tokens. Access tokens are stateless: never persisted and not revocable
// before natural expiry.
type AccessTokenManager interface {
	Issue(userID uuid.UUID, email string) (string, error)
	Parse(token string) (userID uuid.UUID, email string, err error)
}
