package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"notebase/internal/transport/http/response"
)

// RateLimit applies a fixed-window counter per client IP and route. The
// limiter fails open: a redis error never blocks the request, and a nil
// client disables limiting entirely.
func RateLimit(client *redisv9.Client, limit int, window time.Duration) gin.HandlerFunc {
	if client == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", c.ClientIP(), c.FullPath(), bucket)

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}
		if count > int64(limit) {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited,
				"rate limit exceeded, retry later")
			c.Abort()
			return
		}
		c.Next()
	}
}
