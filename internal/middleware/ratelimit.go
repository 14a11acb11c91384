package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"tasktracker/internal/logger"
	"tasktracker/internal/metrics"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns nil when addr is empty or the server
// does not answer a ping, in which case rate limiting is disabled.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("⚠️  Redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		client.Close()
		return nil
	}
	return client
}

// RateLimiter is a fixed-window limiter keyed by client IP, backed by Redis INCR/EXPIRE.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "rl:auth:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":",
	}
}

// Middleware allows every request when Redis is not configured or fails.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		endpoint := c.FullPath()
		key := rl.prefix + c.ClientIP()
		ctx := c.Request.Context()

		count, err := rl.hit(ctx, key)
		if err != nil {
			logger.Warn("rate limiter redis error", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		metrics.RateLimitRequests.WithLabelValues(endpoint).Inc()

		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			metrics.RateLimitBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded", "code": "throttled"})
			return
		}

		c.Next()
	}
}

// hit counts a request in the current window. A key left without a TTL, for
// instance after a failed EXPIRE, gets one on the next hit.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	if ttl.Val() < 0 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			logger.Warn("rate limiter could not set window expiry", "key", key, "error", err)
		}
	}
	return incr.Val(), nil
}
