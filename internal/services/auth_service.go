package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
	"github.com/litterscan/backend/internal/store"
)

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AuthService orchestrates signup and signin over the password vault,
// the token service and the store.
type AuthService struct {
	gateway store.Gateway
	vault   *PasswordVault
	tokens  *TokenService
}

func NewAuthService(gateway store.Gateway, vault *PasswordVault, tokens *TokenService) *AuthService {
	return &AuthService{gateway: gateway, vault: vault, tokens: tokens}
}

// Signup creates a user and returns its id with a fresh session token.
// A username collision surfaces as ErrUsernameTaken with no partial state.
func (s *AuthService) Signup(ctx context.Context, username, password string) (uuid.UUID, string, error) {
	hash, err := s.vault.Hash(password)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.gateway.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return uuid.Nil, "", ErrUsernameTaken
		}
		slog.Error("signup insert failed", "error", err, "action", "signup")
		return uuid.Nil, "", ErrStorageUnavailable
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID.String())
	return user.ID, token, nil
}

// Signin verifies credentials and issues a fresh token. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, username, password string) (uuid.UUID, string, error) {
	user, err := s.gateway.FindUserByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, "", ErrInvalidCredentials
	}

	if !s.vault.Verify(password, user.PasswordHash) {
		return uuid.Nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user signed in", "user_id", user.ID.String())
	return user.ID, token, nil
}
