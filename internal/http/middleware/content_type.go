package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-export/internal/models"
)

// RequireJSON rejects request bodies that are not JSON.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength == 0 {
			ctx.Next()
			return
		}

		contentType := ctx.GetHeader("Content-Type")
		if !strings.HasPrefix(contentType, "application/json") {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
				Success: false,
				Error:   "Content-Type must be application/json",
			})
			return
		}
		ctx.Next()
	}
}
