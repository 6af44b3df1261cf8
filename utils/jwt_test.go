package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	InitJWTSecret()

	signed, err := GenerateToken(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["member_id"])
	assert.Equal(t, "admin", claims["role"])
}

func TestGenerateTokenRejectsWrongSecret(t *testing.T) {
	InitJWTSecret()

	signed, err := GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("some-other-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrongpass", hash))
}
