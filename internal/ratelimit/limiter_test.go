package ratelimit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotsense/spotscore/internal/monitoring"
)

func newFallbackLimiter(config Config) *RateLimiter {
	// No Redis: exercises the in-memory token bucket path
	redisClient := &RedisClient{enabled: false}
	return NewRateLimiter(redisClient, config, monitoring.NewMetrics())
}

func TestRateLimiterFallbackBlocksOverLimit(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:       5,
		CheckinLimitPerHour: 5,
		BurstMultiplier:     1,
	})
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.AllowIP(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
	}

	result, err := limiter.AllowIP(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter.Seconds(), 0.0)
}

func TestRateLimiterBurstCapacity(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:       5,
		CheckinLimitPerHour: 5,
		BurstMultiplier:     2,
	})
	defer limiter.Close()

	ctx := context.Background()

	allowedCount := 0
	for i := 0; i < 15; i++ {
		result, err := limiter.AllowIP(ctx, "198.51.100.2")
		require.NoError(t, err)
		if result.Allowed {
			allowedCount++
		}
	}

	assert.GreaterOrEqual(t, allowedCount, 5, "should allow at least the base limit")
	assert.LessOrEqual(t, allowedCount, 12, "should not exceed burst plus a small margin")
}

func TestRateLimiterIndependentIPs(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:       5,
		CheckinLimitPerHour: 5,
		BurstMultiplier:     1,
	})
	defer limiter.Close()

	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		for i := 0; i < 5; i++ {
			result, err := limiter.AllowIP(ctx, ip)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "ip %s request %d should be allowed", ip, i+1)
		}
		result, err := limiter.AllowIP(ctx, ip)
		require.NoError(t, err)
		assert.False(t, result.Allowed, "ip %s 6th request should be blocked", ip)
	}
}

func TestRateLimiterCheckinBucketIsSeparate(t *testing.T) {
	limiter := newFallbackLimiter(Config{
		IPLimitPerMin:       100,
		CheckinLimitPerHour: 5,
		BurstMultiplier:     1,
	})
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.AllowCheckin(ctx, "192.0.2.9")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	result, err := limiter.AllowCheckin(ctx, "192.0.2.9")
	require.NoError(t, err)
	assert.False(t, result.Allowed, "check-in bucket should exhaust independently")

	// General IP bucket is unaffected
	result, err = limiter.AllowIP(ctx, "192.0.2.9")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimiterStats(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = limiter.AllowIP(ctx, "203.0.113.50")
	}

	stats := limiter.GetStats()
	require.NotNil(t, stats)
	assert.False(t, stats["redis_enabled"].(bool))
	assert.GreaterOrEqual(t, stats["fallback_limiters"].(int), 1)
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 1500; i++ {
		_, _ = limiter.AllowIP(ctx, fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}

	limiter.cleanup()

	stats := limiter.GetStats()
	assert.Less(t, stats["fallback_limiters"].(int), 1500, "cleanup should reset an oversized limiter map")
}

func TestRateLimiterConcurrency(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	defer limiter.Close()

	ctx := context.Background()
	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				_, err := limiter.AllowIP(ctx, "203.0.113.99")
				assert.NoError(t, err)
			}
			done <- true
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}
}

func TestRateLimiterCancelledContextStillFallsBack(t *testing.T) {
	limiter := newFallbackLimiter(DefaultConfig())
	defer limiter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := limiter.AllowIP(ctx, "203.0.113.123")
	require.NoError(t, err)
	assert.NotNil(t, result)
}
