package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

// VaultService is the slice of the vault service the handlers need.
type VaultService interface {
	CreateCredential(ctx context.Context, params model.CreateCredentialParams) (model.Credential, error)
	GetCredential(ctx context.Context, userID, credentialID uuid.UUID) (model.Credential, error)
	ListCredentials(ctx context.Context, userID uuid.UUID) ([]model.Credential, error)
	RevealSecret(ctx context.Context, userID, credentialID uuid.UUID) (string, error)
	UpdateCredential(ctx context.Context, params model.UpdateCredentialParams) (model.Credential, error)
	DeleteCredential(ctx context.Context, userID, credentialID uuid.UUID) error
	UploadAttachment(ctx context.Context, userID, credentialID uuid.UUID, data []byte) error
	DownloadAttachment(ctx context.Context, userID, credentialID uuid.UUID) ([]byte, error)
}

// Vault handles credential vault endpoints. Every route requires an
// authenticated user in the request context.
type Vault struct {
	vault          VaultService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewVault creates a new Vault handler.
func NewVault(vault VaultService, contextManager model.ContextManager, logger *logger.Logger) *Vault {
	return &Vault{
		vault:          vault,
		contextManager: contextManager,
		logger:         logger,
	}
}

type createCredentialRequest struct {
	Name   string `json:"name"`
	Login  string `json:"login"`
	Secret string `json:"secret"`
	Notes  string `json:"notes"`
}

func (r createCredentialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Login, validation.Length(0, 255)),
	)
}

type updateCredentialRequest struct {
	Name   string  `json:"name"`
	Login  string  `json:"login"`
	Secret *string `json:"secret"`
	Notes  string  `json:"notes"`
}

func (r updateCredentialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Login, validation.Length(0, 255)),
	)
}

type uploadAttachmentRequest struct {
	// Data carries the attachment payload base64-encoded.
	Data string `json:"data"`
}

func (r uploadAttachmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Data, validation.Required),
	)
}

type credentialResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Login         string    `json:"login"`
	Notes         string    `json:"notes"`
	HasAttachment bool      `json:"has_attachment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type secretResponse struct {
	Secret string `json:"secret"`
}

type listCredentialsResponse struct {
	Credentials []credentialResponse `json:"credentials"`
}

func mapCredential(credential model.Credential) credentialResponse {
	return credentialResponse{
		ID:            credential.ID.String(),
		Name:          credential.Name,
		Login:         credential.Login,
		Notes:         credential.Notes,
		HasAttachment: credential.AttachmentKey != "",
		CreatedAt:     credential.CreatedAt,
		UpdatedAt:     credential.UpdatedAt,
	}
}

func (h *Vault) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, model.ErrInvalidToken, h.logger)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Vault) credentialID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleBindError(c, fmt.Errorf("invalid credential id: %w", err), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// Create stores a new credential entry with its secret sealed.
// POST /api/vault/credentials
func (h *Vault) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	credential, err := h.vault.CreateCredential(c.Request.Context(), model.CreateCredentialParams{
		OwnerID: userID,
		Name:    req.Name,
		Login:   req.Login,
		Secret:  req.Secret,
		Notes:   req.Notes,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, mapCredential(credential))
}

// List returns all live entries of the authenticated user. Secrets stay
// sealed; use Reveal to open one.
// GET /api/vault/credentials
func (h *Vault) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	credentials, err := h.vault.ListCredentials(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	response := listCredentialsResponse{Credentials: make([]credentialResponse, 0, len(credentials))}
	for _, credential := range credentials {
		response.Credentials = append(response.Credentials, mapCredential(credential))
	}

	c.JSON(http.StatusOK, response)
}

// Get returns a single entry's metadata.
// GET /api/vault/credentials/:id
func (h *Vault) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	credential, err := h.vault.GetCredential(c.Request.Context(), userID, credentialID)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapCredential(credential))
}

// Reveal opens the sealed secret of one entry.
// GET /api/vault/credentials/:id/secret
func (h *Vault) Reveal(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	secret, err := h.vault.RevealSecret(c.Request.Context(), userID, credentialID)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, secretResponse{Secret: secret})
}

// Update rewrites entry fields. Omitting the secret keeps the stored
// sealed value.
// PUT /api/vault/credentials/:id
func (h *Vault) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	var req updateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	credential, err := h.vault.UpdateCredential(c.Request.Context(), model.UpdateCredentialParams{
		OwnerID: userID,
		ID:      credentialID,
		Name:    req.Name,
		Login:   req.Login,
		Secret:  req.Secret,
		Notes:   req.Notes,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapCredential(credential))
}

// Delete soft-deletes the entry.
// DELETE /api/vault/credentials/:id
func (h *Vault) Delete(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	if err := h.vault.DeleteCredential(c.Request.Context(), userID, credentialID); err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadAttachment seals and stores an attachment for the entry.
// PUT /api/vault/credentials/:id/attachment
func (h *Vault) UploadAttachment(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	var req uploadAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		handleValidationError(c, fmt.Errorf("invalid base64 data: %w", err), h.logger)
		return
	}

	if err := h.vault.UploadAttachment(c.Request.Context(), userID, credentialID, data); err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadAttachment opens and returns the entry's attachment.
// GET /api/vault/credentials/:id/attachment
func (h *Vault) DownloadAttachment(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	credentialID, ok := h.credentialID(c)
	if !ok {
		return
	}

	data, err := h.vault.DownloadAttachment(c.Request.Context(), userID, credentialID)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", data)
}
