package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"tictactoe_server/internal/logger"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by RateLimit.
// An empty addr or a failed ping leaves the client nil and the limiter on
// its in-process fallback.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting falls back to local", "addr", addr, "err", err)
		return
	}
	redisClient = client
}

// redisRateLimit counts in a Redis fixed window keyed by client IP.
// Redis errors fail open so a broken cache never takes the server down.
func redisRateLimit(c *gin.Context, maxRequests int, windowSize time.Duration) {
	key := "rl:" + strconv.FormatInt(int64(windowSize.Seconds()), 10) + ":" + c.ClientIP()
	ctx := c.Request.Context()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		redisClient.Expire(ctx, key, windowSize)
	}

	if val > int64(maxRequests) {
		rlBlocked.WithLabelValues(c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	rlRequests.WithLabelValues(c.FullPath()).Inc()
	c.Next()
}
