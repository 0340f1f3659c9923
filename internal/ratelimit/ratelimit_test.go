package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avorobev/authd/internal/ratelimit"
)

func TestLimiter_CapacityExhaustion(t *testing.T) {
	limiter := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.NoError(t, limiter.TryAcquire(), "acquire %d should succeed", i+1)
	}

	err := limiter.TryAcquire()
	assert.ErrorIs(t, err, ratelimit.ErrRateLimited)
	assert.Equal(t, 3, limiter.Occupied())
}

func TestLimiter_SlotsReleaseAfterWindow(t *testing.T) {
	limiter := ratelimit.New(2, 50*time.Millisecond)

	assert.NoError(t, limiter.TryAcquire())
	assert.NoError(t, limiter.TryAcquire())
	assert.ErrorIs(t, limiter.TryAcquire(), ratelimit.ErrRateLimited)

	// After the window the slots free up again.
	assert.Eventually(t, func() bool {
		return limiter.TryAcquire() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestLimiter_DefensiveDefaults(t *testing.T) {
	limiter := ratelimit.New(0, 0)

	assert.NoError(t, limiter.TryAcquire())
	assert.ErrorIs(t, limiter.TryAcquire(), ratelimit.ErrRateLimited)
}

func TestLimiter_ConcurrentAcquire(t *testing.T) {
	const capacity = 10
	limiter := ratelimit.New(capacity, time.Minute)

	results := make(chan error, capacity*2)
	for i := 0; i < capacity*2; i++ {
		go func() {
			results <- limiter.TryAcquire()
		}()
	}

	var ok, limited int
	for i := 0; i < capacity*2; i++ {
		if err := <-results; err != nil {
			limited++
		} else {
			ok++
		}
	}

	assert.Equal(t, capacity, ok)
	assert.Equal(t, capacity, limited)
}
