package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/objects"
)

// AbortWithError aborts the request with a JSON error response and records the
// error in the gin context and the request context for access logging.
func AbortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	contexts.AddError(c.Request.Context(), err)
	c.AbortWithStatusJSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}
