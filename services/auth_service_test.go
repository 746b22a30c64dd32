package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/errors"
	"github.com/Lynxchester/lynxchat/mocks"
	"github.com/Lynxchester/lynxchat/repositories"
)

func newTestService(t *testing.T) (*AuthService, *mocks.MockIUserRepository, *auth.TokenManager) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(log, users, tokens), users, tokens
}

func TestRegister_Issues_Token(t *testing.T) {
	// Given
	service, users, tokens := newTestService(t)
	users.EXPECT().CreateUser("lynxfan", gomock.Any()).Return("user-42", nil)

	// When
	token, err := service.Register(auth.RegisterRequest{
		Username: "lynxfan",
		Password: "Str0ng&Secret!",
	})

	// Then
	require.NoError(t, err)
	identity, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", identity.UserID)
	require.Equal(t, "lynxfan", identity.Username)
}

func TestRegister_Duplicate_Username(t *testing.T) {
	// Given
	service, users, _ := newTestService(t)
	users.EXPECT().CreateUser("lynxfan", gomock.Any()).Return("", errors.ErrUserAlreadyExists)

	// When
	_, err := service.Register(auth.RegisterRequest{
		Username: "lynxfan",
		Password: "Str0ng&Secret!",
	})

	// Then
	require.ErrorIs(t, err, errors.ErrUserAlreadyExists)
}

func TestRegister_Weak_Password_Never_Reaches_Storage(t *testing.T) {
	// Given
	service, _, _ := newTestService(t)

	// When
	_, err := service.Register(auth.RegisterRequest{
		Username: "lynxfan",
		Password: "alllowercasebutlong",
	})

	// Then
	require.ErrorIs(t, err, errors.ErrInvalidPassword)
}

func TestLogin_Issues_Token(t *testing.T) {
	// Given
	service, users, tokens := newTestService(t)
	hash, err := auth.HashPassword("Str0ng&Secret!")
	require.NoError(t, err)
	users.EXPECT().GetUserByUsername("lynxfan").Return(repositories.User{
		ID:           "user-42",
		Username:     "lynxfan",
		PasswordHash: hash,
	}, nil)

	// When
	token, err := service.Login(auth.LoginRequest{Username: "lynxfan", Password: "Str0ng&Secret!"})

	// Then
	require.NoError(t, err)
	identity, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", identity.UserID)
}

func TestLogin_Wrong_Password(t *testing.T) {
	// Given
	service, users, _ := newTestService(t)
	hash, err := auth.HashPassword("Str0ng&Secret!")
	require.NoError(t, err)
	users.EXPECT().GetUserByUsername("lynxfan").Return(repositories.User{
		ID:           "user-42",
		Username:     "lynxfan",
		PasswordHash: hash,
	}, nil)

	// When
	_, err = service.Login(auth.LoginRequest{Username: "lynxfan", Password: "WrongPassword1!"})

	// Then
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLogin_Unknown_User_Indistinguishable(t *testing.T) {
	// Given
	service, users, _ := newTestService(t)
	users.EXPECT().GetUserByUsername("ghost").Return(repositories.User{}, errors.ErrUserNotFound)

	// When
	_, err := service.Login(auth.LoginRequest{Username: "ghost", Password: "Whatever123!"})

	// Then
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}
