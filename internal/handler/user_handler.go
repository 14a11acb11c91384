package handler

import (
	"context"
	"net/http"

	"tasktracker/internal/auth"
	"tasktracker/internal/logger"
	"tasktracker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CredentialService interface {
	Register(ctx context.Context, username, password, password2 string) (*model.User, error)
	Verify(ctx context.Context, username, password string) (*model.User, error)
}

type TokenService interface {
	Issue(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type UserHandler struct {
	creds  CredentialService
	tokens TokenService
}

func NewUserHandler(creds CredentialService, tokens TokenService) *UserHandler {
	return &UserHandler{creds: creds, tokens: tokens}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UserResponse struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type TokenResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *UserResponse `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary      Register a new user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Credentials"
// @Success      201   {object}  RegisterResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.creds.Register(c.Request.Context(), req.Username, req.Password, req.Password2)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("user registered", "user_id", user.ID.String())
	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully!",
		User:    UserResponse{ID: user.ID.String(), Username: user.Username},
	})
}

// Login godoc
// @Summary      Obtain an access/refresh token pair
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.creds.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.tokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		User:    &UserResponse{Username: user.Username},
	})
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new pair
// @Description  The presented refresh token is revoked; use the returned one next time.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      RefreshRequest  true  "Refresh token"
// @Success      200   {object}  TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      RefreshRequest  true  "Refresh token"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), req.Refresh); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out!"})
}
