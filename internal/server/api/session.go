package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/server/biz"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type SessionHandlersParams struct {
	fx.In

	SessionService *biz.SessionService
}

func NewSessionHandlers(params SessionHandlersParams) *SessionHandlers {
	return &SessionHandlers{
		SessionService: params.SessionService,
	}
}

type SessionHandlers struct {
	SessionService *biz.SessionService
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func (h *SessionHandlers) List(c *gin.Context) {
	limit, offset := pagination(c)

	sessions, err := h.SessionService.List(c.Request.Context(), limit, offset)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandlers) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid session id"))
		return
	}

	session, err := h.SessionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, biz.ErrSessionNotFound) {
			JSONError(c, http.StatusNotFound, err)
			return
		}

		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)

		return
	}

	c.JSON(http.StatusOK, session)
}

type CreateSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *SessionHandlers) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	session, err := h.SessionService.Create(c.Request.Context(), req.Name)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusCreated, session)
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SessionHandlers) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid session id"))
		return
	}

	var req UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	err = h.SessionService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, biz.ErrSessionNotFound) {
			JSONError(c, http.StatusNotFound, err)
			return
		}

		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)

		return
	}

	c.Status(http.StatusNoContent)
}
