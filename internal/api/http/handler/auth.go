package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
	"github.com/passkeeper/passkeeper-server/internal/service"
)

// AuthService is the slice of the auth service the handlers need.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (service.AuthResult, error)
	Login(ctx context.Context, login, password string) (service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// Auth handles authentication endpoints.
type Auth struct {
	auth           AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(auth AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		auth:           auth,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

func mapAuthResult(result service.AuthResult) authResponse {
	return authResponse{
		User: userResponse{
			ID:        result.User.ID.String(),
			Email:     result.User.Email,
			Username:  result.User.Username,
			CreatedAt: result.User.CreatedAt,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

// Register creates a new account.
// POST /api/auth/register
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, mapAuthResult(result))
}

// Login verifies credentials and mints an access token.
// POST /api/auth/login
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapAuthResult(result))
}

// Refresh rotates the refresh session and returns a new token pair.
// POST /api/auth/refresh
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapAuthResult(result))
}

// Logout deletes the refresh session behind the presented token.
// POST /api/auth/logout
func (h *Auth) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePassword replaces the account password for the authenticated user.
// POST /api/auth/password
func (h *Auth) ChangePassword(c *gin.Context) {
	userID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, model.ErrInvalidToken, h.logger)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		handleValidationError(c, err, h.logger)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
