package jwt

import (
	"testing"
	"time"

	"clinic-booking/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  access,
		RefreshExpiry: time.Hour,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService(time.Minute)
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "ana@example.com", "Patient")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "Patient", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestJWTService_RefreshTokenType(t *testing.T) {
	svc := newTestService(time.Minute)

	token, _, err := svc.GenerateRefreshToken(uuid.New(), "luis@example.com", "Administrator")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestJWTService_RejectsExpiredAndForeignTokens(t *testing.T) {
	expired := newTestService(-time.Minute)
	token, _, err := expired.GenerateAccessToken(uuid.New(), "a@b.co", "Patient")
	require.NoError(t, err)

	_, err = expired.ValidateToken(token)
	assert.Error(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another", AccessExpiry: time.Minute})
	token, _, err = other.GenerateAccessToken(uuid.New(), "a@b.co", "Patient")
	require.NoError(t, err)

	_, err = newTestService(time.Minute).ValidateToken(token)
	assert.Error(t, err)
}
