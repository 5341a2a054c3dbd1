package api

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoTenantClaim is returned when a token carries no tenant id.
var ErrNoTenantClaim = errors.New("token has no tenant claim")

// TokenClaims are the claims the platform embeds in access tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	TenantID string   `json:"tid"`
	Roles    []string `json:"roles,omitempty"`
}

// TenantFromToken extracts the tenant id from a bearer token without
// verifying the signature. The engine only needs the id to key its local
// cache; signature verification is the collaborators' concern.
func TenantFromToken(token string) (string, error) {
	claims := &TokenClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.TenantID != "" {
		return claims.TenantID, nil
	}
	// Older tokens carried the tenant as the subject.
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", ErrNoTenantClaim
}
