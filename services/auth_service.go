package services

import (
	"log/slog"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/errors"
	"github.com/Lynxchester/lynxchat/repositories"
)

// AuthService owns the account lifecycle: registration, credential
// checks, and session token issuance. Everything downstream of a login
// trusts only the signed token.
type AuthService struct {
	log    *slog.Logger
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(log *slog.Logger, users repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, users: users, tokens: tokens}
}

// Register creates an account and returns a session token so the client
// can connect immediately.
func (s *AuthService) Register(req auth.RegisterRequest) (string, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	userID, err := s.users.CreateUser(req.Username, hash)
	if err != nil {
		return "", err
	}

	s.log.Info("user registered", "username", req.Username)
	return s.tokens.Generate(userID, req.Username)
}

// Login verifies the credentials and returns a session token. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(req auth.LoginRequest) (string, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", err
	}

	user, err := s.users.GetUserByUsername(req.Username)
	if err != nil {
		if err == errors.ErrUserNotFound {
			return "", errors.ErrInvalidCredentials
		}
		return "", err
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", errors.ErrInvalidCredentials
	}

	s.log.Info("user logged in", "username", req.Username)
	return s.tokens.Generate(user.ID, req.Username)
}
