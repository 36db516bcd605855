package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterConcurrentIncrements(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	const goroutines, perGoroutine = 10, 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_ = c.Increment(ctx, "esp32-01")
			}
		}()
	}
	wg.Wait()

	n, err := c.Count(ctx, "esp32-01")
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine), n)

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine), total)

	n, err = c.Count(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, n)
}
