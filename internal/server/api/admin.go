package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/server/biz"
)

type AdminHandlersParams struct {
	fx.In

	VerifyService   *biz.VerifyService
	PermissionCache *biz.PermissionCache
}

func NewAdminHandlers(params AdminHandlersParams) *AdminHandlers {
	return &AdminHandlers{
		VerifyService:   params.VerifyService,
		PermissionCache: params.PermissionCache,
	}
}

type AdminHandlers struct {
	VerifyService   *biz.VerifyService
	PermissionCache *biz.PermissionCache
}

// VerifyIsolation runs the data isolation self-check for the request's project.
func (h *AdminHandlers) VerifyIsolation(c *gin.Context) {
	result, err := h.VerifyService.Verify(c.Request.Context())
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InvalidatePermissions drops all cached access decisions for a project. Meant
// to be called by the user-management service after a membership change.
func (h *AdminHandlers) InvalidatePermissions(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectID"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	if err := h.PermissionCache.InvalidateProject(c.Request.Context(), projectID.String()); err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.Status(http.StatusNoContent)
}
