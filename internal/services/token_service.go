package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/session"
)

// tokenSigningMethod is the single algorithm used for both issuing and
// verifying session tokens. Keeping one constant here rules out the
// issue-with-one-algorithm, verify-with-another misconfiguration.
var tokenSigningMethod = jwt.SigningMethodHS256

// Internal diagnostics only; callers must collapse all of these into one
// opaque unauthorized outcome.
var (
	ErrTokenMalformed       = errors.New("token malformed")
	ErrTokenBadSignature    = errors.New("token signature invalid")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMissingIdentity = errors.New("token missing identity claims")
)

// TokenService issues and verifies signed, time-bounded session tokens.
// Tokens are stateless and self-verifying; nothing is persisted.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, expiry time.Duration) *TokenService {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &TokenService{secret: secret, expiry: expiry, now: time.Now}
}

// Issue signs a token bound to the subject identity. The subject id and
// username both live inside the signed claims.
func (s *TokenService) Issue(userID uuid.UUID, username string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(tokenSigningMethod, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and extracts the subject identity.
func (s *TokenService) Verify(raw string) (session.Principal, error) {
	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{tokenSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return session.Principal{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return session.Principal{}, ErrTokenBadSignature
		default:
			return session.Principal{}, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session.Principal{}, ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return session.Principal{}, ErrTokenMissingIdentity
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return session.Principal{}, ErrTokenMissingIdentity
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return session.Principal{}, ErrTokenMissingIdentity
	}

	return session.Principal{UserID: userID, Username: username}, nil
}
