package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/tracing"
)

// AccessLog returns a middleware that logs access information for each request.
// It logs: status code, method, path, operation, and errors.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()

		// Collect errors from gin context and request context. The same error
		// may be recorded in both, so duplicates are dropped.
		var errMsgs []string

		seen := map[string]bool{}
		record := func(msg string) {
			if !seen[msg] {
				seen[msg] = true
				errMsgs = append(errMsgs, msg)
			}
		}

		for _, e := range c.Errors {
			record(e.Error())
		}

		for _, e := range contexts.GetErrors(ctx) {
			record(e.Error())
		}

		// Only log if there are errors or status >= 400
		status := c.Writer.Status()
		if status < 400 && len(errMsgs) == 0 {
			return
		}

		latency := time.Since(start)

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", latency),
			log.String("client_ip", c.ClientIP()),
		}

		if opName, ok := tracing.GetOperationName(ctx); ok {
			fields = append(fields, log.String("operation", opName))
		}

		if len(errMsgs) > 0 {
			fields = append(fields, log.Strings("errors", errMsgs))
		}

		log.Error(ctx, "[ACCESS]", fields...)
	}
}
