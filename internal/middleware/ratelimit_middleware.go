package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/pkg/ratelimit"
)

// RateLimit rejects callers exceeding limit requests per window. Requests
// are keyed by client IP plus the route prefix so the login limiter and
// the general API limiter count independently.
func RateLimit(store ratelimit.Store, keyPrefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyPrefix + ":" + c.ClientIP()

		allowed, retryAfter := store.Allow(key, limit, window)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests")))
			return
		}
		c.Next()
	}
}
