package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcdash/gmcdash/internal/contexts"
)

func TestAbortWithErrorRecordsRequestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(contexts.WithCallerID(req.Context(), "alice"))

	AbortWithError(c, http.StatusBadRequest, errors.New("boom"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, c.IsAborted())

	errs := contexts.GetErrors(c.Request.Context())
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Error())
}
