package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic/internal/model"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := &model.User{ID: 42, Email: "dr@example.com", Role: model.RoleDoctor}

	tokenID, token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, tokenID, claims.ID)
	assert.InDelta(t, AccessTokenExpiry.Seconds(), svc.RemainingTTL(claims).Seconds(), 5)

	_, err = svc.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_RefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := &model.User{ID: 7, Email: "alice@example.com", Role: model.RolePatient}

	tokenID, token, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, claims.ID)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("test-secret")
	other := NewJWTService("other-secret")
	user := &model.User{ID: 1, Role: model.RoleAdmin}

	_, token, err := other.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	_, expired, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
