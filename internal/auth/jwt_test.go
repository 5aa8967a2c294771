package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-test-secret")
	require.NoError(t, InitJWTSecret())

	token, err := GenerateAccessToken(42, "user@example.com", []string{"user", "manager"})
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"user", "manager"}, claims.Roles)
	assert.Equal(t, "access", claims.Type)
}

func TestRefreshPathRejectsAccessTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-test-secret")
	require.NoError(t, InitJWTSecret())

	accessToken, err := GenerateAccessToken(1, "a@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = VerifyRefreshToken(accessToken)
	assert.Error(t, err)

	refreshToken, err := GenerateRefreshToken(1, "a@example.com", []string{"user"})
	require.NoError(t, err)

	claims, err := VerifyRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-test-secret")
	require.NoError(t, InitJWTSecret())

	token, err := GenerateAccessToken(1, "a@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = VerifyToken(token + "x")
	assert.Error(t, err)
}
