package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore defines persistence operations for credential entries.
type CredentialStore interface {
	Create(ctx context.Context, credential Credential) (Credential, error)
	GetByID(ctx context.Context, id uuid.UUID) (Credential, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Credential, error)
	Update(ctx context.Context, credential Credential) (Credential, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Credential represents a stored password entry. SealedSecret is the
// base64 AEAD output (nonce || tag || ciphertext) bound to the entry ID
// as associated data; the storage layer treats it as opaque. It is
// replaced wholesale on update, never patched in place.
type Credential struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Login         string
	SealedSecret  string
	Notes         string
	AttachmentKey string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// CreateCredentialParams contains parameters to create a credential entry.
type CreateCredentialParams struct {
	OwnerID uuid.UUID
	Name    string
	Login   string
	Secret  string
	Notes   string
}

// UpdateCredentialParams contains parameters to update a credential
// entry. A nil Secret leaves the sealed value untouched.
type UpdateCredentialParams struct {
	OwnerID uuid.UUID
	ID      uuid.UUID
	Name    string
	Login   string
	Secret  *string
	Notes   string
}
