package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
	ErrTokenExpired  = errors.New("token expired")
)

// Claims is what this process reads from a backend-issued access token.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ParseToken decodes an access token without checking its signature; the signing key
// belongs to the backend, which verifies every request anyway. Expiry is checked so a
// stale session fails before a round trip.
func ParseToken(tokenStr string) (*Claims, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}

	out := &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
		if !out.ExpiresAt.After(time.Now()) {
			return nil, ErrTokenExpired
		}
	}
	return out, nil
}
