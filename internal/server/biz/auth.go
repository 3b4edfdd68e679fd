package biz

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gmcdash/gmcdash/internal/log"
)

// AuthConfig configures bearer token verification. Token issuance is owned by
// the user-management service; this layer only verifies.
type AuthConfig struct {
	// SecretKey is the shared HS256 signing key.
	SecretKey string `conf:"secret_key" yaml:"secret_key" json:"secret_key"`
}

func NewAuthService(cfg AuthConfig) *AuthService {
	return &AuthService{config: cfg}
}

// AuthService authenticates callers from bearer tokens.
type AuthService struct {
	config AuthConfig
}

// AuthenticateToken verifies the HS256 token and returns the caller id from
// its subject claim.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		log.Debug(ctx, "token verification failed", log.Cause(err))
		return "", ErrInvalidJWT
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidJWT
	}

	return subject, nil
}
