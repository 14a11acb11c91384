package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"tasktracker/internal/auth"
	"tasktracker/internal/handler"
	"tasktracker/internal/model"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserTest() (*gin.Engine, *MockCredentialService, *MockTokenService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	creds := new(MockCredentialService)
	tokens := new(MockTokenService)
	userHandler := handler.NewUserHandler(creds, tokens)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.POST("/refresh", userHandler.Refresh)
	r.POST("/logout", asUser(uuid.New()), userHandler.Logout)

	return r, creds, tokens
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, creds, _ := setupUserTest()
	user := &model.User{ID: uuid.New(), Username: "alice"}
	creds.On("Register", mock.Anything, "alice", "Str0ng!Passphrase", "Str0ng!Passphrase").Return(user, nil)

	// Act
	resp := doJSON(router, http.MethodPost, "/register", handler.RegisterRequest{
		Username: "alice", Password: "Str0ng!Passphrase", Password2: "Str0ng!Passphrase",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var body handler.RegisterResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "User registered successfully!", body.Message)
	assert.Equal(t, user.ID.String(), body.User.ID)
	assert.Equal(t, "alice", body.User.Username)
	assert.NotContains(t, resp.Body.String(), "Passphrase")

	creds.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	router, creds, _ := setupUserTest()
	creds.On("Register", mock.Anything, "alice", mock.Anything, mock.Anything).Return(nil, service.ErrDuplicateUsername)

	resp := doJSON(router, http.MethodPost, "/register", handler.RegisterRequest{
		Username: "alice", Password: "Str0ng!Passphrase", Password2: "Str0ng!Passphrase",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"A user with that username already exists."}, body.Fields["username"])
}

func TestRegister_ValidationError(t *testing.T) {
	router, creds, _ := setupUserTest()
	verr := &service.ValidationError{}
	verr.Add("password", "This password is too short. It must contain at least 8 characters.")
	verr.Add("password", "Password fields didn't match.")
	creds.On("Register", mock.Anything, "alice", "short", "other").Return(nil, verr)

	resp := doJSON(router, http.MethodPost, "/register", handler.RegisterRequest{
		Username: "alice", Password: "short", Password2: "other",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Fields["password"], 2)
}

func TestRegister_MalformedBody(t *testing.T) {
	router, creds, _ := setupUserTest()

	resp := doJSON(router, http.MethodPost, "/register", `{"username": `)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	creds.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, creds, tokens := setupUserTest()
	user := &model.User{ID: uuid.New(), Username: "alice"}
	creds.On("Verify", mock.Anything, "alice", "Str0ng!Passphrase").Return(user, nil)
	tokens.On("Issue", mock.Anything, user.ID).Return(&auth.TokenPair{Access: "access-token", Refresh: "refresh-token"}, nil)

	// Act
	resp := doJSON(router, http.MethodPost, "/login", handler.LoginRequest{Username: "alice", Password: "Str0ng!Passphrase"})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.TokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "access-token", body.Access)
	assert.Equal(t, "refresh-token", body.Refresh)
	require.NotNil(t, body.User)
	assert.Equal(t, "alice", body.User.Username)

	creds.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, creds, tokens := setupUserTest()
	creds.On("Verify", mock.Anything, "alice", "wrong").Return(nil, service.ErrInvalidCredentials)

	resp := doJSON(router, http.MethodPost, "/login", handler.LoginRequest{Username: "alice", Password: "wrong"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_credentials", decodeError(resp)["code"])
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestLogin_MissingFields(t *testing.T) {
	router, _, _ := setupUserTest()

	resp := doJSON(router, http.MethodPost, "/login", map[string]string{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"This field is required."}, body.Fields["password"])
}

func TestRefresh(t *testing.T) {
	router, _, tokens := setupUserTest()
	tokens.On("Refresh", mock.Anything, "good").Return(&auth.TokenPair{Access: "a2", Refresh: "r2"}, nil)
	tokens.On("Refresh", mock.Anything, "revoked").Return(nil, auth.ErrTokenRevoked)
	tokens.On("Refresh", mock.Anything, "expired").Return(nil, auth.ErrTokenExpired)
	tokens.On("Refresh", mock.Anything, "garbage").Return(nil, auth.ErrTokenInvalid)

	resp := doJSON(router, http.MethodPost, "/refresh", handler.RefreshRequest{Refresh: "good"})
	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.TokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "a2", body.Access)
	assert.Equal(t, "r2", body.Refresh)
	assert.Nil(t, body.User)

	for token, code := range map[string]string{
		"revoked": "token_revoked",
		"expired": "token_expired",
		"garbage": "token_not_valid",
	} {
		resp := doJSON(router, http.MethodPost, "/refresh", handler.RefreshRequest{Refresh: token})
		assert.Equal(t, http.StatusBadRequest, resp.Code, token)
		assert.Equal(t, code, decodeError(resp)["code"], token)
	}
}

func TestLogout(t *testing.T) {
	router, _, tokens := setupUserTest()
	tokens.On("Revoke", mock.Anything, "refresh-token").Return(nil)
	tokens.On("Revoke", mock.Anything, "bad").Return(auth.ErrTokenInvalid)

	resp := doJSON(router, http.MethodPost, "/logout", handler.RefreshRequest{Refresh: "refresh-token"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Successfully logged out!")

	resp = doJSON(router, http.MethodPost, "/logout", handler.RefreshRequest{Refresh: "bad"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodPost, "/logout", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	tokens.AssertExpectations(t)
}

func TestInternalErrorIsHidden(t *testing.T) {
	router, creds, _ := setupUserTest()
	creds.On("Verify", mock.Anything, "alice", "pw").Return(nil, errors.New("pq: connection reset by peer"))

	resp := doJSON(router, http.MethodPost, "/login", handler.LoginRequest{Username: "alice", Password: "pw"})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", decodeError(resp)["error"])
	assert.NotContains(t, resp.Body.String(), "connection reset")
}
