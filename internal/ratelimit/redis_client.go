package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// RedisClient is the limiter's connection to Redis. A zero-value or
// unconfigured client is valid and reports disabled, which drops every
// limiter onto the in-memory fallback.
type RedisClient struct {
	client  *redis.Client
	enabled bool
	addr    string
}

// NewRedisClient dials Redis for the distributed rate limiter. An empty addr
// means no Redis in this deployment: the returned client is disabled, not an
// error. A configured addr that fails to ping returns both the disabled
// client and the ping error, so the caller can log and keep serving.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	if addr == "" {
		slog.Warn("Redis not configured, rate limiting will use in-memory fallback")
		return &RedisClient{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &RedisClient{addr: addr}, fmt.Errorf("redis ping failed: %w", err)
	}

	slog.Info("Redis client connected", "addr", addr, "db", db)
	return &RedisClient{client: client, enabled: true, addr: addr}, nil
}

// Client exposes the underlying connection for the sliding-window limiter.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Enabled reports whether the distributed limiter can be used.
func (r *RedisClient) Enabled() bool {
	return r.enabled
}

// Status summarizes the connection for the health endpoint: "disabled" when
// Redis is not part of the deployment, "ok" on a live connection, or the
// ping failure.
func (r *RedisClient) Status(ctx context.Context) string {
	if !r.enabled {
		return "disabled"
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

// PoolStats reports connection pool counters for the metrics endpoint.
func (r *RedisClient) PoolStats() map[string]interface{} {
	if !r.enabled {
		return map[string]interface{}{"enabled": false}
	}
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"enabled":     true,
		"addr":        r.addr,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}

func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
