package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

func TestNoopCartCache(t *testing.T) {
	var c CartCache = NoopCartCache{}
	require.NoError(t, c.Set(context.Background(), "s1", []domain.CartLine{{CartID: "1"}}, time.Minute))
	lines, ok, err := c.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, lines)
}

func TestCartKeyIsNamespaced(t *testing.T) {
	assert.Equal(t, "storefront:cart:abc", cartKey("abc"))
}

func TestRedisCartCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set STOREFRONT_TEST_REDIS_ADDR to run redis integration test")
	}
	ctx := context.Background()
	c := NewRedisCartCache(addr, "", 0)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	session := "it-" + time.Now().Format("150405.000000000")
	lines := []domain.CartLine{{CartID: "2-#FF0000", ProductID: 2, Price: 6800, Quantity: 2}}
	require.NoError(t, c.Set(ctx, session, lines, time.Minute))

	got, ok, err := c.Get(ctx, session)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lines, got)

	require.NoError(t, c.Set(ctx, session, nil, time.Minute))
	_, ok, err = c.Get(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok)
}
