package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/redis"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// RateLimit allows limit requests per client IP and route within window,
// using the Redis sliding window. A nil rdb or a Redis error lets requests
// through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
