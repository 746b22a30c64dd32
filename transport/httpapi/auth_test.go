package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/errors"
	"github.com/Lynxchester/lynxchat/mocks"
	"github.com/Lynxchester/lynxchat/repositories"
	"github.com/Lynxchester/lynxchat/services"
)

func newTestHandler(t *testing.T) (*AuthHandler, *mocks.MockIUserRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthHandler(log, services.NewAuthService(log, users, tokens)), users
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister_Endpoint_Returns_Token(t *testing.T) {
	// Given
	handler, users := newTestHandler(t)
	users.EXPECT().CreateUser("lynxfan", gomock.Any()).Return("user-42", nil)

	// When
	rec := postJSON(t, handler.Register, auth.RegisterRequest{
		Username: "lynxfan",
		Password: "Str0ng&Secret!",
	})

	// Then
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
}

func TestRegister_Endpoint_Conflict_On_Duplicate(t *testing.T) {
	// Given
	handler, users := newTestHandler(t)
	users.EXPECT().CreateUser("lynxfan", gomock.Any()).Return("", errors.ErrUserAlreadyExists)

	// When
	rec := postJSON(t, handler.Register, auth.RegisterRequest{
		Username: "lynxfan",
		Password: "Str0ng&Secret!",
	})

	// Then
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Endpoint_Rejects_Short_Username(t *testing.T) {
	// Given
	handler, _ := newTestHandler(t)

	// When
	rec := postJSON(t, handler.Register, auth.RegisterRequest{
		Username: "ab",
		Password: "Str0ng&Secret!",
	})

	// Then
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Endpoint_Returns_Token(t *testing.T) {
	// Given
	handler, users := newTestHandler(t)
	hash, err := auth.HashPassword("Str0ng&Secret!")
	require.NoError(t, err)
	users.EXPECT().GetUserByUsername("lynxfan").Return(repositories.User{
		ID:           "user-42",
		Username:     "lynxfan",
		PasswordHash: hash,
	}, nil)

	// When
	rec := postJSON(t, handler.Login, auth.LoginRequest{Username: "lynxfan", Password: "Str0ng&Secret!"})

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
}

func TestLogin_Endpoint_Unauthorized_On_Bad_Credentials(t *testing.T) {
	// Given
	handler, users := newTestHandler(t)
	users.EXPECT().GetUserByUsername("ghost").Return(repositories.User{}, errors.ErrUserNotFound)

	// When
	rec := postJSON(t, handler.Login, auth.LoginRequest{Username: "ghost", Password: "Whatever123!"})

	// Then
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_Endpoint_Rejects_Garbage_Body(t *testing.T) {
	// Given
	handler, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	// When
	handler.Login(rec, req)

	// Then
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
