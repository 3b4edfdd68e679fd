package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/server/biz"
)

var errMissingBearer = errors.New("missing bearer token")

// ExtractBearerToken pulls the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingBearer
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errMissingBearer
	}

	return token, nil
}

// WithCallerAuth authenticates the caller from the bearer token and stores the
// caller id in the request context. Identity only; project authorization is
// the isolation middleware's job.
func WithCallerAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c.Request)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		callerID, err := auth.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, biz.ErrInternal)
			}

			return
		}

		ctx := contexts.WithCallerID(c.Request.Context(), callerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
