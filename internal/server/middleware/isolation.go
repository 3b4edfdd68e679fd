package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/permissions"
	"github.com/gmcdash/gmcdash/internal/server/biz"
)

const (
	// ProjectIDHeader carries the project id when it is not in the path, and is
	// stamped on every response whose project was determined.
	ProjectIDHeader = "X-Project-ID"

	// IsolationHeader marks responses that went through project isolation.
	IsolationHeader = "X-Data-Isolation"

	isolationEnforced = "enforced"
)

// maxBodyProbeSize bounds how much of the body is read when probing for a
// project id. Bodies larger than this fall back to path/header extraction only.
const maxBodyProbeSize = 1 << 20

// ExtractProjectID finds the project id for a request. Precedence: path
// parameter, then the X-Project-ID header, then a top-level project_id field
// in a JSON body. The body is restored so handlers can read it again.
func ExtractProjectID(c *gin.Context) string {
	if projectID := c.Param("projectID"); projectID != "" {
		return projectID
	}

	if projectID := c.GetHeader(ProjectIDHeader); projectID != "" {
		return projectID
	}

	return extractProjectIDFromBody(c)
}

func extractProjectIDFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyProbeSize+1))
	if err != nil {
		log.Warn(c.Request.Context(), "project id extraction: body read failed", log.Cause(err))
		return ""
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) > maxBodyProbeSize {
		return ""
	}

	return gjson.GetBytes(body, "project_id").String()
}

// WithProjectIsolation is the request isolation middleware. It extracts the
// project id, validates the (project, caller) pair, resolves the immutable
// project context and attaches it to the request. No handler behind it runs
// without a resolved project context; every failure rejects the request.
func WithProjectIsolation(access *biz.AccessService, resolver *biz.ContextService) gin.HandlerFunc {
	return WithProjectIsolationPermission(access, resolver, "")
}

// WithProjectIsolationPermission is WithProjectIsolation with a granular
// permission required on top of membership. Guards are built once at route
// registration, so a slug outside the catalog fails at startup instead of
// silently denying every request.
func WithProjectIsolationPermission(access *biz.AccessService, resolver *biz.ContextService, permission string) gin.HandlerFunc {
	if permission != "" && !permissions.IsValid(permission) {
		panic(fmt.Sprintf("unknown permission slug %q", permission))
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		projectID := ExtractProjectID(c)
		callerID, _ := contexts.GetCallerID(ctx)

		pid, err := access.Validate(ctx, projectID, callerID, permission)
		if err != nil {
			// Error responses carry the stamp only once the project id parsed;
			// malformed input is never echoed back in a header.
			if parsed, parseErr := uuid.Parse(projectID); parseErr == nil {
				stampIsolation(c, parsed.String())
			}

			abortIsolation(c, err)

			return
		}

		stampIsolation(c, pid.String())

		pc, err := resolver.Resolve(ctx, pid, callerID)
		if err != nil {
			abortIsolation(c, err)
			return
		}

		ctx = contexts.WithProjectContext(ctx, pc)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// stampIsolation marks the response with the project it was scoped to. Applied
// to error responses too, once a project id is known.
func stampIsolation(c *gin.Context, projectID string) {
	c.Header(ProjectIDHeader, projectID)
	c.Header(IsolationHeader, isolationEnforced)
}

// abortIsolation maps the isolation error taxonomy onto HTTP statuses.
func abortIsolation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, isolation.ErrMissingProjectID),
		errors.Is(err, isolation.ErrInvalidProjectID):
		AbortWithError(c, http.StatusBadRequest, err)
	case errors.Is(err, isolation.ErrMissingCallerID):
		AbortWithError(c, http.StatusUnauthorized, err)
	case errors.Is(err, isolation.ErrAccessDenied):
		AbortWithError(c, http.StatusForbidden, isolation.ErrAccessDenied)
	case errors.Is(err, isolation.ErrValidatorUnavailable):
		AbortWithError(c, http.StatusServiceUnavailable, isolation.ErrValidatorUnavailable)
	case errors.Is(err, isolation.ErrContextResolution):
		AbortWithError(c, http.StatusInternalServerError, isolation.ErrContextResolution)
	default:
		AbortWithError(c, http.StatusInternalServerError, biz.ErrInternal)
	}
}
