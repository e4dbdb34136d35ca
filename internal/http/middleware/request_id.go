package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps the caller's request id or assigns a new one, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			ctx.Request.Header.Set(RequestIDHeader, id)
		}
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}
