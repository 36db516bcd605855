package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCounter fails the first failures calls with err.
type flakyCounter struct {
	*fakeCounter
	failures int
	failErr  error
}

func (f *flakyCounter) Increment(ctx context.Context, deviceID string) error {
	if f.failures > 0 {
		f.failures--
		f.fakeCounter.mu.Lock()
		f.fakeCounter.calls++
		f.fakeCounter.mu.Unlock()
		return f.failErr
	}
	return f.fakeCounter.Increment(ctx, deviceID)
}

func fastResilient(primary, fallback *fakeCounter) *ResilientUsage {
	r := NewResilientUsage(primary, fallback, quietLogger())
	r.baseDelay = time.Millisecond
	return r
}

func TestResilientUsageUsesPrimary(t *testing.T) {
	primary, fallback := newFakeCounter(), newFakeCounter()
	r := fastResilient(primary, fallback)

	require.NoError(t, r.Increment(context.Background(), "dev"))

	n, _ := primary.Count(context.Background(), "dev")
	assert.Equal(t, int64(1), n)
	n, _ = fallback.Count(context.Background(), "dev")
	assert.Zero(t, n)
}

func TestResilientUsageRetriesTransientErrors(t *testing.T) {
	primary := &flakyCounter{
		fakeCounter: newFakeCounter(),
		failures:    2,
		failErr:     errors.New("dial tcp: connection refused"),
	}
	fallback := newFakeCounter()
	r := NewResilientUsage(primary, fallback, quietLogger())
	r.baseDelay = time.Millisecond

	require.NoError(t, r.Increment(context.Background(), "dev"))

	assert.Equal(t, 3, primary.callCount())
	n, _ := primary.Count(context.Background(), "dev")
	assert.Equal(t, int64(1), n)
	assert.Zero(t, fallback.callCount())
}

func TestResilientUsageFallsBackWhenPrimaryDown(t *testing.T) {
	primary, fallback := newFakeCounter(), newFakeCounter()
	primary.err = errors.New("connection refused")
	r := fastResilient(primary, fallback)

	require.NoError(t, r.Increment(context.Background(), "dev"))
	assert.Equal(t, 3, primary.callCount())

	n, err := r.Count(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := r.Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestResilientUsageDoesNotRetryPermanentErrors(t *testing.T) {
	primary, fallback := newFakeCounter(), newFakeCounter()
	primary.err = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	r := fastResilient(primary, fallback)

	require.NoError(t, r.Increment(context.Background(), "dev"))
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, fallback.callCount())
}

func TestResilientUsageSumsPrimaryAndFallback(t *testing.T) {
	primary, fallback := newFakeCounter(), newFakeCounter()
	ctx := context.Background()
	require.NoError(t, primary.Increment(ctx, "dev"))
	require.NoError(t, primary.Increment(ctx, "dev"))
	require.NoError(t, fallback.Increment(ctx, "dev"))
	require.NoError(t, fallback.Increment(ctx, "other"))

	r := fastResilient(primary, fallback)

	n, err := r.Count(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	total, err := r.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestCalculateBackoffGrows(t *testing.T) {
	r := NewResilientUsage(newFakeCounter(), newFakeCounter(), nil)
	for attempt := 0; attempt < 3; attempt++ {
		base := r.baseDelay * time.Duration(1<<attempt)
		got := r.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/5)
	}
}
