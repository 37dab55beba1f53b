package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWritesStatusAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeForbidden, "无权访问该订单")

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "无权访问该订单", body.Error)
	assert.Equal(t, "req-1", body.RequestID)
}

func TestErrorRejectsNonErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 0, "boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "request_id")
}

func TestBuildPagination(t *testing.T) {
	assert.Equal(t, int64(3), BuildPagination(1, 20, 41).TotalPage)
	assert.Equal(t, int64(0), BuildPagination(1, 20, 0).TotalPage)
	assert.Equal(t, int64(0), BuildPagination(1, 0, 10).TotalPage)
}

func TestAppError(t *testing.T) {
	inner := errors.New("db down")
	err := WrapError(CodeInternal, "服务器内部错误", inner)
	assert.True(t, err.IsServerError())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "服务器内部错误: db down", err.Error())
	assert.False(t, WrapError(CodeNotFound, "x", nil).IsServerError())
}
