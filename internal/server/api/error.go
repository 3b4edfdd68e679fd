package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/objects"
)

// JSONError returns a JSON error response and records the error in the gin
// context and the request context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	contexts.AddError(c.Request.Context(), err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}
