package auth_test

import (
	"context"
	"testing"
	"time"

	"issueboard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)
	return s
}

func TestParseToken_Valid(t *testing.T) {
	// Arrange
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, jwt.MapClaims{
		"sub":   "8b3c2f9e-1f4a-4c55-9d1e-0a7c2b6d4e11",
		"email": "lead@example.com",
		"role":  "team_leader",
		"exp":   exp.Unix(),
	})

	// Act
	claims, err := auth.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "8b3c2f9e-1f4a-4c55-9d1e-0a7c2b6d4e11", claims.Subject)
	assert.Equal(t, "lead@example.com", claims.Email)
	assert.Equal(t, "team_leader", claims.Role)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-1 * time.Hour).Unix(),
	})

	_, err := auth.ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestParseToken_MissingSubject(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})

	_, err := auth.ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestContextToken_PrefersRequestToken(t *testing.T) {
	src := auth.ContextToken{Fallback: "fallback"}

	got, err := src.Token(auth.WithToken(context.Background(), "from-request"))
	require.NoError(t, err)
	assert.Equal(t, "from-request", got)

	got, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}
