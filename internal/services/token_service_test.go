package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

func newTestTokenService() *TokenService {
	return NewTokenService(&config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:        42,
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Martin",
		Role:      models.RoleTeacher,
	}
}

func TestIssuePairAndVerify(t *testing.T) {
	service := newTestTokenService()
	pair, err := service.IssuePair(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := service.VerifyAccess(pair.Access)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.FirstName)
	assert.Equal(t, "Martin", claims.LastName)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	service := newTestTokenService()
	pair, err := service.IssuePair(testUser())
	require.NoError(t, err)

	_, err = service.VerifyAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	service := newTestTokenService()
	pair, err := service.IssuePair(testUser())
	require.NoError(t, err)

	other := NewTokenService(&config.Config{
		JWTSecret:       "other-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})

	_, err = other.Verify(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	expired := NewTokenService(&config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: -time.Minute,
	})
	pair, err := expired.IssuePair(testUser())
	require.NoError(t, err)

	_, err = expired.Verify(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	service := newTestTokenService()
	pair, err := service.IssuePair(testUser())
	require.NoError(t, err)

	access, err := service.Refresh(pair.Refresh)
	require.NoError(t, err)

	claims, err := service.VerifyAccess(access)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, models.RoleTeacher, claims.Role)

	// The refresh token is not rotated and keeps working
	_, err = service.Refresh(pair.Refresh)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	service := newTestTokenService()
	pair, err := service.IssuePair(testUser())
	require.NoError(t, err)

	_, err = service.Refresh(pair.Access)
	assert.ErrorIs(t, err, ErrNotRefreshToken)
}
