package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow(), "request %d within burst", i)
	}
	assert.False(t, limiter.Allow(), "bucket should be empty after burst")

	time.Sleep(110 * time.Millisecond)
	assert.True(t, limiter.Allow(), "token should replenish after ~100ms")
}

func TestWaitBlocksUntilTokenAvailable(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	elapsed := time.Since(start)

	assert.Greater(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestSetLimitRaisesThroughput(t *testing.T) {
	limiter := New(10, 10)
	for i := 0; i < 10; i++ {
		limiter.Allow()
	}
	require.False(t, limiter.Allow())

	limiter.SetLimit(100)
	time.Sleep(200 * time.Millisecond)

	allowed := 0
	for i := 0; i < 50; i++ {
		if limiter.Allow() {
			allowed++
		} else {
			break
		}
	}
	assert.Greater(t, allowed, 10)
}

func TestUnlimitedRateNeverBlocks(t *testing.T) {
	limiter := New(0, 0)
	for i := 0; i < 1000; i++ {
		require.True(t, limiter.Allow())
	}
}
