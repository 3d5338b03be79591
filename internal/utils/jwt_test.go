package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessAndRefreshTokensAreNotInterchangeable(t *testing.T) {
	SetJWTSecret("jwt-test-secret")
	userID := uuid.New()

	access, err := GenerateJWT(userID, "legal@example.com", "Legal", 1)
	require.NoError(t, err)
	refresh, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	claims, err := ValidateJWT(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Legal", claims.Role)

	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)

	_, err = ValidateJWT(refresh)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	SetJWTSecret("jwt-test-secret")

	token, err := GenerateJWT(uuid.New(), "a@example.com", "Sales", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
