package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestLogger tags each request with an id and logs it once finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("requestId", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequireQuery rejects requests missing any of the named query parameters.
func RequireQuery(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var missing []global.ValidationError
		for _, p := range params {
			if c.Query(p) == "" {
				missing = append(missing, global.ValidationError{
					Field: p, Message: p + " query parameter is required", Code: "required",
				})
			}
		}
		if len(missing) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, global.ErrorResponse(missing[0].Field+" query parameter required", missing))
			return
		}
		c.Next()
	}
}
