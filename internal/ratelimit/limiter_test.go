package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_New(t *testing.T) {
	limiter := New(10, time.Second)

	assert.NotNil(t, limiter)
}

func TestLimiter_Allow(t *testing.T) {
	limiter := New(5, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(), "request %d should be allowed", i+1)
	}

	assert.False(t, limiter.Allow(), "request 6 should be blocked")
}

func TestLimiter_Wait(t *testing.T) {
	limiter := New(5, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		err := limiter.Wait(context.Background())
		assert.NoError(t, err)
	}
}

func TestLimiter_Wait_ContextCancellation(t *testing.T) {
	limiter := New(1, time.Second)

	err := limiter.Wait(context.Background())
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestLimiter_WaitBucket(t *testing.T) {
	limiter := New(5, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		err := limiter.WaitBucket(context.Background(), BucketOrders)
		assert.NoError(t, err)
	}
}

func TestLimiter_BucketsAreIndependent(t *testing.T) {
	limiter := New(1, time.Minute)

	// Draining the global bucket must not affect the orders bucket.
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	err := limiter.WaitBucket(context.Background(), BucketOrders)
	assert.NoError(t, err)
}

func TestLimiter_SetBucketLimit(t *testing.T) {
	limiter := New(1, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, limiter.WaitBucket(ctx, "slow"))
	assert.Error(t, limiter.WaitBucket(ctx, "slow"))

	limiter.SetBucketLimit("slow", 1000, time.Second)
	time.Sleep(50 * time.Millisecond)

	assert.NoError(t, limiter.WaitBucket(context.Background(), "slow"))
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(100, time.Second)

	var wg sync.WaitGroup
	results := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- limiter.Allow()
		}()
	}

	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}

	assert.LessOrEqual(t, allowed, 100, "should not allow more than 100 requests")
}

func TestLimiter_Metrics(t *testing.T) {
	limiter := New(1, time.Minute)

	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	m := limiter.Metrics()
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.AllowedRequests)
	assert.Equal(t, int64(1), m.DeniedRequests)
}
