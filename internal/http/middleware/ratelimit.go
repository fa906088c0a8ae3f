package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

var (
	rlMu      sync.Mutex
	rlWindows = make(map[string]*window)
)

// RateLimit is a fixed-window per-IP limiter. With Redis configured it
// counts there so multiple instances share a budget; otherwise it falls back
// to process-local state.
func RateLimit(maxRequests int, windowSize time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient != nil {
			redisRateLimit(c, maxRequests, windowSize)
			return
		}
		localRateLimit(c, maxRequests, windowSize)
	}
}

func localRateLimit(c *gin.Context, maxRequests int, windowSize time.Duration) {
	ip := c.ClientIP()
	now := time.Now()

	rlMu.Lock()
	w, ok := rlWindows[ip]
	if !ok || now.Sub(w.start) > windowSize {
		rlWindows[ip] = &window{start: now, count: 1}
		rlMu.Unlock()
		rlRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
		return
	}
	w.count++
	count := w.count
	rlMu.Unlock()

	if count > maxRequests {
		rlBlocked.WithLabelValues(c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	rlRequests.WithLabelValues(c.FullPath()).Inc()
	c.Next()
}
