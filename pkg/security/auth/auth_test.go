package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "jane@example.com", testSecret, 1)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(uuid.New(), "a@b.c", testSecret, 1)
	require.NoError(t, err)
	expired, err := GenerateToken(uuid.New(), "a@b.c", testSecret, -1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other"},
		{"expired", expired, testSecret},
		{"garbage", "not-a-token", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestGenerateAdminToken(t *testing.T) {
	token, err := GenerateAdminToken("admin@example.com", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, uuid.Nil, claims.UserID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestMemoryRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewMemoryRateLimiter(time.Minute, 2)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, remaining, _, err := rl.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, _, _, _ = rl.Allow(ctx, "ip")
	assert.True(t, allowed)

	allowed, remaining, _, _ = rl.Allow(ctx, "ip")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// other keys are independent
	allowed, _, _, _ = rl.Allow(ctx, "other")
	assert.True(t, allowed)

	// next window resets
	now = now.Add(time.Minute)
	allowed, _, _, _ = rl.Allow(ctx, "ip")
	assert.True(t, allowed)

	require.NoError(t, rl.Reset(ctx, "ip"))
}
