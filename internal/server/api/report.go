package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/server/biz"
)

type ReportHandlersParams struct {
	fx.In

	ReportService *biz.ReportService
}

func NewReportHandlers(params ReportHandlersParams) *ReportHandlers {
	return &ReportHandlers{
		ReportService: params.ReportService,
	}
}

type ReportHandlers struct {
	ReportService *biz.ReportService
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid session id"))
		return uuid.Nil, false
	}

	return id, true
}

func (h *ReportHandlers) List(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)

	reports, err := h.ReportService.List(c.Request.Context(), sessionID, limit, offset)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *ReportHandlers) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("reportID"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid report id"))
		return
	}

	report, err := h.ReportService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, biz.ErrReportNotFound) {
			JSONError(c, http.StatusNotFound, err)
			return
		}

		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)

		return
	}

	c.JSON(http.StatusOK, report)
}

type ImportReportRequest struct {
	Quarter int    `json:"quarter" binding:"required,min=1"`
	Company string `json:"company" binding:"required"`
	Payload []byte `json:"payload"`
}

func (h *ReportHandlers) Import(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req ImportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	report, err := h.ReportService.Import(c.Request.Context(), sessionID, req.Quarter, req.Company, req.Payload)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *ReportHandlers) ListParameterChanges(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	changes, err := h.ReportService.ListParameterChanges(c.Request.Context(), sessionID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parameter_changes": changes})
}

type RecordParameterChangeRequest struct {
	Parameter string `json:"parameter" binding:"required"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value" binding:"required"`
}

func (h *ReportHandlers) RecordParameterChange(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req RecordParameterChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	change, err := h.ReportService.RecordParameterChange(
		c.Request.Context(), sessionID, req.Parameter, req.OldValue, req.NewValue)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusCreated, change)
}
