package auth

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateTokenPair(t *testing.T) {
	m := NewJWTManager("secret", "coursehub", 15*time.Minute, time.Hour)
	userID := uuid.New()

	pair, err := m.GenerateTokenPair(userID, []string{models.ClientRole})
	require.NoError(t, err)

	access, refresh := pair.Raw()
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	assert.True(t, m.TokenType(pair.AccessToken, AccessTokenType))
	assert.False(t, m.TokenType(pair.AccessToken, RefreshTokenType))
	assert.True(t, m.TokenType(pair.RefreshToken, RefreshTokenType))

	claims, err := m.AccessClaims(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{models.ClientRole}, claims.Roles)

	_, err = m.AccessClaims(refresh)
	assert.Error(t, err, "refresh token must not pass as access token")
}

func TestJWTManager_Parse(t *testing.T) {
	m := NewJWTManager("secret", "coursehub", time.Minute, time.Hour)
	pair, err := m.GenerateTokenPair(uuid.New(), nil)
	require.NoError(t, err)
	access, _ := pair.Raw()

	t.Run("other key", func(t *testing.T) {
		other := NewJWTManager("another-secret", "coursehub", time.Minute, time.Hour)
		_, err := other.Parse(access)
		assert.Error(t, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTManager("secret", "someone-else", time.Minute, time.Hour)
		_, err := other.Parse(access)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("secret", "coursehub", time.Minute, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := later.Parse(access)
		assert.ErrorIs(t, err, app_errors.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.Error(t, err)
	})
}
