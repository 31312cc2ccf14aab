package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paynetra/reports_backend/utils"
)

const RequestIdHeader = "X-Request-Id"

// RequestIdMiddleware tags every request with an id for log correlation,
// honoring one supplied by the caller.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.Request.Header.Get(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}

		ctx := utils.SetRequestIdInContext(c.Request.Context(), requestId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIdHeader, requestId)
		c.Next()
	}
}
