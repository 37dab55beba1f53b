package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	UseClient(nil, "")
	ctx := context.Background()

	assert.False(t, Enabled())
	assert.Nil(t, Client())

	var dest map[string]int
	hit, err := GetJSON(ctx, "any", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, SetJSON(ctx, "any", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, Del(ctx, "any"))
	assert.NoError(t, InvalidateCoupon(ctx, "SAVE20", " "))
	assert.NoError(t, InvalidateCardStats(ctx))
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	UseClient(nil, "shop")
	assert.Equal(t, "shop:coupon:SAVE20", BuildKey(couponKey("SAVE20")))
	assert.Equal(t, "shop", BuildKey("  "))

	UseClient(nil, "")
	assert.Equal(t, "sf:session:abc", BuildKey(sessionStateKey(" abc ")))
}

func TestBuildSessionState(t *testing.T) {
	assert.Nil(t, BuildSessionState(nil))
	expires := time.Now().Add(time.Hour)
	state := BuildSessionState(&models.UserSession{
		UserID:    7,
		ExpiresAt: expires,
		User:      &models.User{ID: 7, Email: "a@example.com", Nickname: "a"},
	})
	require.NotNil(t, state)
	assert.Equal(t, uint(7), state.UserID)
	assert.Equal(t, expires.Unix(), state.ExpiresAt)
}
