package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/crawlservice/pkg/limiter"
	"github.com/stretchr/testify/assert"
)

func TestConcurrentRateLimiter_Wait_FirstCallDoesNotBlock(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(50 * time.Millisecond)

	start := time.Now()
	err := rl.Wait(context.Background(), "example.com")
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 25*time.Millisecond)
}

func TestConcurrentRateLimiter_Wait_SecondCallRespectsBaseDelay(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(60 * time.Millisecond)

	require := assert.New(t)
	require.NoError(rl.Wait(context.Background(), "example.com"))

	start := time.Now()
	require.NoError(rl.Wait(context.Background(), "example.com"))
	require.GreaterOrEqual(time.Since(start), 40*time.Millisecond)
}

func TestConcurrentRateLimiter_Wait_ContextCancellation(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(time.Second)
	assert.NoError(t, rl.Wait(context.Background(), "example.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentRateLimiter_Wait_PerHostIndependence(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(50 * time.Millisecond)

	assert.NoError(t, rl.Wait(context.Background(), "a.example.com"))

	start := time.Now()
	assert.NoError(t, rl.Wait(context.Background(), "b.example.com"))
	assert.Less(t, time.Since(start), 25*time.Millisecond)
}
