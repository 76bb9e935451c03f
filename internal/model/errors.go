package model

import "errors"

// Sentinel errors shared across services and repositories. Callers are
// expected to match with errors.Is; anything else is an infrastructure
// failure wrapped with context.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or missing input, including a
	// sealed secret that is absent, not valid base64, or too short.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailed indicates an AEAD tag mismatch: wrong key,
	// wrong associated data, or tampered ciphertext. Decryption fails
	// closed and never returns partial plaintext.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrDuplicateIdentity indicates the email or username is already taken.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrInvalidCredentials is returned for both an unknown user and a
	// wrong password so callers cannot tell which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates the presented refresh token does not
	// resolve to a stored session.
	ErrInvalidToken = errors.New("invalid token")
)
