// Package middleware provides the Gin middleware stack for the HTTP API:
// panic recovery, request IDs, CORS, request body limits, request logging,
// and per-client rate limiting.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID injects a unique X-Request-Id header into every request and
// response, preserving an id supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}
