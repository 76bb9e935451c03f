package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/passkeeper/passkeeper-server/internal/api/http/context"
	"github.com/passkeeper/passkeeper-server/internal/model"
	"github.com/passkeeper/passkeeper-server/internal/testutil"
)

type mockVaultService struct {
	mock.Mock
}

func (m *mockVaultService) CreateCredential(ctx context.Context, params model.CreateCredentialParams) (model.Credential, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Credential), args.Error(1)
}

func (m *mockVaultService) GetCredential(ctx context.Context, userID, credentialID uuid.UUID) (model.Credential, error) {
	args := m.Called(ctx, userID, credentialID)
	return args.Get(0).(model.Credential), args.Error(1)
}

func (m *mockVaultService) ListCredentials(ctx context.Context, userID uuid.UUID) ([]model.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Credential), args.Error(1)
}

func (m *mockVaultService) RevealSecret(ctx context.Context, userID, credentialID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, credentialID)
	return args.String(0), args.Error(1)
}

func (m *mockVaultService) UpdateCredential(ctx context.Context, params model.UpdateCredentialParams) (model.Credential, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Credential), args.Error(1)
}

func (m *mockVaultService) DeleteCredential(ctx context.Context, userID, credentialID uuid.UUID) error {
	args := m.Called(ctx, userID, credentialID)
	return args.Error(0)
}

func (m *mockVaultService) UploadAttachment(ctx context.Context, userID, credentialID uuid.UUID, data []byte) error {
	args := m.Called(ctx, userID, credentialID, data)
	return args.Error(0)
}

func (m *mockVaultService) DownloadAttachment(ctx context.Context, userID, credentialID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type vaultHandlerFixture struct {
	vault  *mockVaultService
	router *gin.Engine
	userID uuid.UUID
}

func newVaultHandlerFixture(t *testing.T) *vaultHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	vault := &mockVaultService{}
	cm := httpcontext.NewManager()
	h := NewVault(vault, cm, testutil.MakeNoopLogger())

	userID := uuid.New()

	router := gin.New()
	group := router.Group("/api/vault", func(c *gin.Context) {
		ctx := cm.SetUserIDToContext(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	group.POST("/credentials", h.Create)
	group.GET("/credentials", h.List)
	group.GET("/credentials/:id", h.Get)
	group.PUT("/credentials/:id", h.Update)
	group.DELETE("/credentials/:id", h.Delete)
	group.GET("/credentials/:id/secret", h.Reveal)
	group.PUT("/credentials/:id/attachment", h.UploadAttachment)
	group.GET("/credentials/:id/attachment", h.DownloadAttachment)

	return &vaultHandlerFixture{vault: vault, router: router, userID: userID}
}

func (f *vaultHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sampleCredential(ownerID uuid.UUID) model.Credential {
	now := time.Now()
	return model.Credential{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         "github",
		Login:        "jane",
		SealedSecret: "sealed",
		Notes:        "work account",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestVaultHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		credential := sampleCredential(f.userID)

		f.vault.On("CreateCredential", mock.Anything, model.CreateCredentialParams{
			OwnerID: f.userID,
			Name:    "github",
			Login:   "jane",
			Secret:  "hunter2",
			Notes:   "work account",
		}).Return(credential, nil)

		w := f.do(t, http.MethodPost, "/api/vault/credentials", gin.H{
			"name":   "github",
			"login":  "jane",
			"secret": "hunter2",
			"notes":  "work account",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp credentialResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, credential.ID.String(), resp.ID)
		assert.False(t, resp.HasAttachment)
		assert.NotContains(t, w.Body.String(), "sealed")
	})

	t.Run("missing name", func(t *testing.T) {
		f := newVaultHandlerFixture(t)

		w := f.do(t, http.MethodPost, "/api/vault/credentials", gin.H{"secret": "hunter2"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		f.vault.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
	})
}

func TestVaultHandler_List(t *testing.T) {
	f := newVaultHandlerFixture(t)
	credential := sampleCredential(f.userID)

	f.vault.On("ListCredentials", mock.Anything, f.userID).
		Return([]model.Credential{credential}, nil)

	w := f.do(t, http.MethodGet, "/api/vault/credentials", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp listCredentialsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Credentials, 1)
	assert.Equal(t, credential.ID.String(), resp.Credentials[0].ID)
}

func TestVaultHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		credential := sampleCredential(f.userID)

		f.vault.On("GetCredential", mock.Anything, f.userID, credential.ID).
			Return(credential, nil)

		w := f.do(t, http.MethodGet, "/api/vault/credentials/"+credential.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		id := uuid.New()

		f.vault.On("GetCredential", mock.Anything, f.userID, id).
			Return(model.Credential{}, model.ErrNotFound)

		w := f.do(t, http.MethodGet, "/api/vault/credentials/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newVaultHandlerFixture(t)

		w := f.do(t, http.MethodGet, "/api/vault/credentials/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVaultHandler_Reveal(t *testing.T) {
	f := newVaultHandlerFixture(t)
	id := uuid.New()

	f.vault.On("RevealSecret", mock.Anything, f.userID, id).Return("hunter2", nil)

	w := f.do(t, http.MethodGet, "/api/vault/credentials/"+id.String()+"/secret", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp secretResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hunter2", resp.Secret)
}

func TestVaultHandler_Update(t *testing.T) {
	t.Run("with new secret", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		credential := sampleCredential(f.userID)
		newSecret := "rotated"

		f.vault.On("UpdateCredential", mock.Anything, model.UpdateCredentialParams{
			OwnerID: f.userID,
			ID:      credential.ID,
			Name:    "github",
			Login:   "jane",
			Secret:  &newSecret,
			Notes:   "",
		}).Return(credential, nil)

		w := f.do(t, http.MethodPut, "/api/vault/credentials/"+credential.ID.String(), gin.H{
			"name":   "github",
			"login":  "jane",
			"secret": "rotated",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		f.vault.AssertExpectations(t)
	})

	t.Run("secret omitted stays nil", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		credential := sampleCredential(f.userID)

		f.vault.On("UpdateCredential", mock.Anything, mock.MatchedBy(func(params model.UpdateCredentialParams) bool {
			return params.Secret == nil
		})).Return(credential, nil)

		w := f.do(t, http.MethodPut, "/api/vault/credentials/"+credential.ID.String(), gin.H{
			"name": "github",
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestVaultHandler_Delete(t *testing.T) {
	f := newVaultHandlerFixture(t)
	id := uuid.New()

	f.vault.On("DeleteCredential", mock.Anything, f.userID, id).Return(nil)

	w := f.do(t, http.MethodDelete, "/api/vault/credentials/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVaultHandler_Attachments(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		id := uuid.New()
		payload := []byte("attachment bytes")

		f.vault.On("UploadAttachment", mock.Anything, f.userID, id, payload).Return(nil)

		w := f.do(t, http.MethodPut, "/api/vault/credentials/"+id.String()+"/attachment", gin.H{
			"data": base64.StdEncoding.EncodeToString(payload),
		})

		assert.Equal(t, http.StatusNoContent, w.Code)
		f.vault.AssertExpectations(t)
	})

	t.Run("upload invalid base64", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		id := uuid.New()

		w := f.do(t, http.MethodPut, "/api/vault/credentials/"+id.String()+"/attachment", gin.H{
			"data": "!!! not base64 !!!",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		f.vault.AssertNotCalled(t, "UploadAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("download", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		id := uuid.New()
		payload := []byte("attachment bytes")

		f.vault.On("DownloadAttachment", mock.Anything, f.userID, id).Return(payload, nil)

		w := f.do(t, http.MethodGet, "/api/vault/credentials/"+id.String()+"/attachment", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, payload, w.Body.Bytes())
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	})

	t.Run("download missing", func(t *testing.T) {
		f := newVaultHandlerFixture(t)
		id := uuid.New()

		f.vault.On("DownloadAttachment", mock.Anything, f.userID, id).
			Return(nil, model.ErrNotFound)

		w := f.do(t, http.MethodGet, "/api/vault/credentials/"+id.String()+"/attachment", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
