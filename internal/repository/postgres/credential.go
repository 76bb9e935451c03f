package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/passkeeper/passkeeper-server/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, owner_id, name, login, sealed_secret, notes, attachment_key, created_at, updated_at, deleted_at`

func (r *CredentialRepository) Create(ctx context.Context, credential model.Credential) (model.Credential, error) {
	query := `INSERT INTO credentials (id, owner_id, name, login, sealed_secret, notes, attachment_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + credentialColumns

	var saved model.Credential
	err := r.db.QueryRow(ctx, query,
		credential.ID, credential.OwnerID, credential.Name, credential.Login,
		credential.SealedSecret, credential.Notes, credential.AttachmentKey,
		credential.CreatedAt, credential.UpdatedAt,
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.Name, &saved.Login, &saved.SealedSecret,
		&saved.Notes, &saved.AttachmentKey, &saved.CreatedAt, &saved.UpdatedAt, &saved.DeletedAt,
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to create credential: %w", err)
	}

	return saved, nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1 AND deleted_at IS NULL`

	var credential model.Credential
	err := r.db.QueryRow(ctx, query, id).Scan(
		&credential.ID, &credential.OwnerID, &credential.Name, &credential.Login, &credential.SealedSecret,
		&credential.Notes, &credential.AttachmentKey, &credential.CreatedAt, &credential.UpdatedAt, &credential.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential by id: %w", err)
	}

	return credential, nil
}

func (r *CredentialRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials
			  WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials by owner: %w", err)
	}
	defer rows.Close()

	var credentials []model.Credential
	for rows.Next() {
		var credential model.Credential
		if err := rows.Scan(
			&credential.ID, &credential.OwnerID, &credential.Name, &credential.Login, &credential.SealedSecret,
			&credential.Notes, &credential.AttachmentKey, &credential.CreatedAt, &credential.UpdatedAt, &credential.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}

	return credentials, nil
}

func (r *CredentialRepository) Update(ctx context.Context, credential model.Credential) (model.Credential, error) {
	query := `UPDATE credentials
			  SET name = $2, login = $3, sealed_secret = $4, notes = $5, attachment_key = $6, updated_at = $7
			  WHERE id = $1 AND deleted_at IS NULL
			  RETURNING ` + credentialColumns

	var saved model.Credential
	err := r.db.QueryRow(ctx, query,
		credential.ID, credential.Name, credential.Login, credential.SealedSecret,
		credential.Notes, credential.AttachmentKey, credential.UpdatedAt,
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.Name, &saved.Login, &saved.SealedSecret,
		&saved.Notes, &saved.AttachmentKey, &saved.CreatedAt, &saved.UpdatedAt, &saved.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to update credential: %w", err)
	}

	return saved, nil
}

func (r *CredentialRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE credentials SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
