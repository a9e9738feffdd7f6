// Package identity verifies caller identity from bearer tokens.
package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// JWTVerifier validates HS256-signed bearer tokens and extracts the
// caller's user id from the subject claim.
type JWTVerifier struct {
	secret []byte
}

var _ ports.TokenVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier creates a verifier for tokens signed with the given
// shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, returning the subject claim as
// the user id. All failures wrap domain.ErrUnauthorized so handlers can
// map them uniformly.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return subject, nil
}
