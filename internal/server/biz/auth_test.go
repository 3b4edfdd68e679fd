package biz

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestAuthenticateToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{SecretKey: "test-secret"})

	token := signToken(t, "test-secret", "alice", time.Now().Add(time.Hour))

	callerID, err := svc.AuthenticateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", callerID)
}

func TestAuthenticateTokenFailures(t *testing.T) {
	svc := NewAuthService(AuthConfig{SecretKey: "test-secret"})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "other-secret", "alice", time.Now().Add(time.Hour))},
		{"expired", signToken(t, "test-secret", "alice", time.Now().Add(-time.Hour))},
		{"empty subject", signToken(t, "test-secret", "", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AuthenticateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidJWT)
		})
	}
}
