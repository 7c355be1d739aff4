package middleware

import (
	"fmt"

	"shipboard/internal/httpx"
	"shipboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit throttles authenticated requests per team using the injected
// limiter. A limiter backend failure fails open: throttling is protection,
// not a correctness requirement.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("team:%d", TeamID(c))
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logrus.Warnf("Rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		if !allowed {
			httpx.FailErr(c, httpx.ErrRateLimited(""))
			c.Abort()
			return
		}

		c.Next()
	}
}
