package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when TEST_REDIS_ADDR is set.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r := NewRedis(addr, "", 15, time.Minute)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r
}

func TestRedisSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	want := page{Items: []string{"a"}, Total: 1}
	var got page
	gen, _, err := r.Get(ctx, "invoices:list:6:1:", &got)
	require.NoError(t, err)
	require.NoError(t, r.Set(ctx, "invoices:list:6:1:", gen, want))

	_, ok, err := r.Get(ctx, "invoices:list:6:1:", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, r.Invalidate(ctx))
	_, ok, err = r.Get(ctx, "invoices:list:6:1:", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	// a value computed before the Invalidate is not served after it
	require.NoError(t, r.Set(ctx, "invoices:list:6:1:", gen, want))
	_, ok, err = r.Get(ctx, "invoices:list:6:1:", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUnreachable(t *testing.T) {
	r := NewRedis("127.0.0.1:1", "", 0, time.Minute)
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var n int
	_, _, err := r.Get(ctx, "k", &n)
	assert.Error(t, err)
	assert.Error(t, r.Invalidate(ctx))
}
