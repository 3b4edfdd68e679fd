package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/server/biz"
)

type SystemHandlersParams struct {
	fx.In

	SystemService *biz.SystemService
}

func NewSystemHandlers(params SystemHandlersParams) *SystemHandlers {
	return &SystemHandlers{
		SystemService: params.SystemService,
	}
}

type SystemHandlers struct {
	SystemService *biz.SystemService
}

// Health is the liveness probe.
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can reach its database.
func (h *SystemHandlers) Ready(c *gin.Context) {
	if err := h.SystemService.Ready(c.Request.Context()); err != nil {
		JSONError(c, http.StatusServiceUnavailable, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Version returns build information.
func (h *SystemHandlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.SystemService.BuildInfo())
}
