package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, issued, err := GenerateJWT("u1", "admin", "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	token, _, err := GenerateJWT("u1", "user", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestPeekExpiry(t *testing.T) {
	token, issued, err := GenerateJWT("u1", "user", "secret", 2*time.Hour)
	require.NoError(t, err)

	exp, ok := PeekExpiry(token)
	require.True(t, ok)
	assert.Equal(t, issued.ExpiresAt.Unix(), exp.Unix())

	_, ok = PeekExpiry("opaque-session-token")
	assert.False(t, ok)
}
