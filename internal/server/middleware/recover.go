package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/server/biz"
)

// Recovery converts panics into a 500 error response instead of killing the
// connection. The stack goes to the log, never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())),
				)

				AbortWithError(c, http.StatusInternalServerError, biz.ErrInternal)
			}
		}()

		c.Next()
	}
}
