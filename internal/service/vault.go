package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

// SecretCipher seals and opens individual secret values.
type SecretCipher interface {
	Encrypt(plaintext, associatedData []byte) (string, error)
	Decrypt(sealed string, associatedData []byte) ([]byte, error)
}

// Vault manages credential entries. Secrets are sealed with the entry ID
// as associated data, so a ciphertext moved onto another entry fails
// authentication instead of decrypting under the wrong record.
type Vault struct {
	credentialStore model.CredentialStore
	userStore       model.UserStore
	cipher          SecretCipher
	storage         model.BlobStorage
	logger          *logger.Logger
}

// NewVault creates a new Vault service.
func NewVault(
	credentialStore model.CredentialStore,
	userStore model.UserStore,
	cipher SecretCipher,
	storage model.BlobStorage,
	logger *logger.Logger,
) *Vault {
	return &Vault{
		credentialStore: credentialStore,
		userStore:       userStore,
		cipher:          cipher,
		storage:         storage,
		logger:          logger,
	}
}

func credentialAAD(id uuid.UUID) []byte {
	return []byte(id.String())
}

func attachmentAAD(id uuid.UUID) []byte {
	return []byte(id.String() + "/attachment")
}

// CreateCredential seals the secret and persists a new entry owned by
// the given user.
func (s *Vault) CreateCredential(ctx context.Context, params model.CreateCredentialParams) (model.Credential, error) {
	if _, err := s.userStore.GetByID(ctx, params.OwnerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	id := uuid.New()
	sealed, err := s.cipher.Encrypt([]byte(params.Secret), credentialAAD(id))
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to seal secret: %w", err)
	}

	now := time.Now()
	credential := model.Credential{
		ID:           id,
		OwnerID:      params.OwnerID,
		Name:         params.Name,
		Login:        params.Login,
		SealedSecret: sealed,
		Notes:        params.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	credential, err = s.credentialStore.Create(ctx, credential)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to create credential: %w", err)
	}

	s.logger.Info("Vault service: credential created",
		"credential_id", credential.ID,
		"owner_id", credential.OwnerID)

	return credential, nil
}

// GetCredential returns entry metadata without revealing the secret. An
// entry owned by someone else reads as not found.
func (s *Vault) GetCredential(ctx context.Context, userID, credentialID uuid.UUID) (model.Credential, error) {
	credential, err := s.credentialStore.GetByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential by id: %w", err)
	}

	if credential.OwnerID != userID {
		return model.Credential{}, model.ErrNotFound
	}

	return credential, nil
}

// ListCredentials returns all live entries owned by the user.
func (s *Vault) ListCredentials(ctx context.Context, userID uuid.UUID) ([]model.Credential, error) {
	credentials, err := s.credentialStore.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials by owner: %w", err)
	}
	return credentials, nil
}

// RevealSecret opens the sealed secret of an entry owned by the user.
func (s *Vault) RevealSecret(ctx context.Context, userID, credentialID uuid.UUID) (string, error) {
	credential, err := s.GetCredential(ctx, userID, credentialID)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Decrypt(credential.SealedSecret, credentialAAD(credential.ID))
	if err != nil {
		return "", fmt.Errorf("failed to open sealed secret: %w", err)
	}

	return string(plaintext), nil
}

// UpdateCredential updates entry fields. A non-nil secret is resealed
// and replaces the stored value wholesale.
func (s *Vault) UpdateCredential(ctx context.Context, params model.UpdateCredentialParams) (model.Credential, error) {
	credential, err := s.GetCredential(ctx, params.OwnerID, params.ID)
	if err != nil {
		return model.Credential{}, err
	}

	credential.Name = params.Name
	credential.Login = params.Login
	credential.Notes = params.Notes
	credential.UpdatedAt = time.Now()

	if params.Secret != nil {
		sealed, err := s.cipher.Encrypt([]byte(*params.Secret), credentialAAD(credential.ID))
		if err != nil {
			return model.Credential{}, fmt.Errorf("failed to seal secret: %w", err)
		}
		credential.SealedSecret = sealed
	}

	credential, err = s.credentialStore.Update(ctx, credential)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to update credential: %w", err)
	}

	return credential, nil
}

// DeleteCredential soft-deletes the entry and removes its attachment
// blob, if any.
func (s *Vault) DeleteCredential(ctx context.Context, userID, credentialID uuid.UUID) error {
	credential, err := s.GetCredential(ctx, userID, credentialID)
	if err != nil {
		return err
	}

	if err := s.credentialStore.SoftDelete(ctx, credential.ID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	if credential.AttachmentKey != "" {
		if err := s.storage.Delete(ctx, credential.AttachmentKey); err != nil {
			s.logger.Error("Vault service: failed to delete attachment blob",
				"credential_id", credential.ID,
				"error", err.Error())
		}
	}

	s.logger.Info("Vault service: credential deleted",
		"credential_id", credential.ID,
		"owner_id", userID)

	return nil
}

// UploadAttachment seals the attachment bytes and stores the blob,
// linking its key to the entry.
func (s *Vault) UploadAttachment(ctx context.Context, userID, credentialID uuid.UUID, data []byte) error {
	credential, err := s.GetCredential(ctx, userID, credentialID)
	if err != nil {
		return err
	}

	sealed, err := s.cipher.Encrypt(data, attachmentAAD(credential.ID))
	if err != nil {
		return fmt.Errorf("failed to seal attachment: %w", err)
	}

	key := fmt.Sprintf("attachments/%s", credential.ID)
	if err := s.storage.Upload(ctx, key, bytes.NewReader([]byte(sealed))); err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}

	credential.AttachmentKey = key
	credential.UpdatedAt = time.Now()
	if _, err := s.credentialStore.Update(ctx, credential); err != nil {
		return fmt.Errorf("failed to link attachment: %w", err)
	}

	return nil
}

// DownloadAttachment retrieves and opens the entry's attachment blob.
func (s *Vault) DownloadAttachment(ctx context.Context, userID, credentialID uuid.UUID) ([]byte, error) {
	credential, err := s.GetCredential(ctx, userID, credentialID)
	if err != nil {
		return nil, err
	}

	if credential.AttachmentKey == "" {
		return nil, model.ErrNotFound
	}

	reader, err := s.storage.Download(ctx, credential.AttachmentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer reader.Close()

	sealed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	data, err := s.cipher.Decrypt(string(sealed), attachmentAAD(credential.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}

	return data, nil
}
