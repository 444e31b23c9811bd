package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"synthetic-audience/internal/service"
)

// RunLimitMiddleware limita los runs por cliente (claims JWT) o, sin auth, por IP.
func RunLimitMiddleware(limiter service.RunLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if claims, ok := GetAuthClaims(c); ok && claims.ClientID != "" {
			key = "client:" + claims.ClientID
		}

		if !limiter.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
