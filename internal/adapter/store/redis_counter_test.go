package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCounterStartsAtZero(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewRedisCounter(client, "")

	n, err := c.Count(context.Background(), "esp32_glasses_001")
	require.NoError(t, err)
	assert.Zero(t, n)

	total, err := c.Total(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRedisCounterIncrements(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCounter(client, "test")
	ctx := context.Background()

	require.NoError(t, c.Increment(ctx, "a"))
	require.NoError(t, c.Increment(ctx, "a"))
	require.NoError(t, c.Increment(ctx, "b"))

	n, err := c.Count(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	raw, err := mr.Get("test:analyses:device:b")
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
}

func TestRedisCounterReportsConnectionErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCounter(client, "test")
	mr.Close()

	assert.Error(t, c.Increment(context.Background(), "a"))
	_, err := c.Count(context.Background(), "a")
	assert.Error(t, err)
}
