package api

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestTenantFromToken(t *testing.T) {
	t.Run("reads the tid claim", func(t *testing.T) {
		token := signedToken(t, TokenClaims{TenantID: "tenant-42"})
		tenant, err := TenantFromToken(token)
		require.NoError(t, err)
		require.Equal(t, "tenant-42", tenant)
	})

	t.Run("falls back to the subject for older tokens", func(t *testing.T) {
		token := signedToken(t, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "tenant-legacy"},
		})
		tenant, err := TenantFromToken(token)
		require.NoError(t, err)
		require.Equal(t, "tenant-legacy", tenant)
	})

	t.Run("tid wins over the subject", func(t *testing.T) {
		token := signedToken(t, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "tenant-legacy"},
			TenantID:         "tenant-42",
		})
		tenant, err := TenantFromToken(token)
		require.NoError(t, err)
		require.Equal(t, "tenant-42", tenant)
	})

	t.Run("a token without a tenant fails", func(t *testing.T) {
		token := signedToken(t, TokenClaims{})
		_, err := TenantFromToken(token)
		require.ErrorIs(t, err, ErrNoTenantClaim)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := TenantFromToken("not-a-jwt")
		require.Error(t, err)
	})
}
