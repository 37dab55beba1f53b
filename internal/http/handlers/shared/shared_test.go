package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(target, acceptLanguage string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if acceptLanguage != "" {
		c.Request.Header.Set("Accept-Language", acceptLanguage)
	}
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var testRules = []ErrorRule{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.payment_code_invalid"},
	{Target: service.ErrOutOfStock, Code: response.CodeBadRequest, Key: "error.out_of_stock"},
}

func TestRespondMappedErrorUsesRule(t *testing.T) {
	c, w := newTestContext("/", "en-US")
	RespondMappedError(c, fmt.Errorf("wrap: %w", service.ErrOrderNotFound), testRules)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment code not found", decodeError(t, w).Error)
}

func TestRespondMappedErrorPrefersDynamicMessageInChinese(t *testing.T) {
	err := &service.CheckError{Kind: service.ErrOutOfStock, Message: "商品 \"Gold\" 库存不足"}

	c, w := newTestContext("/", "zh-CN")
	RespondMappedError(c, err, testRules)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "商品 \"Gold\" 库存不足", decodeError(t, w).Error)

	c, w = newTestContext("/", "en")
	RespondMappedError(c, err, testRules)
	assert.Equal(t, "Out of stock", decodeError(t, w).Error)
}

func TestRespondMappedErrorFallsBackToInternal(t *testing.T) {
	c, w := newTestContext("/", "")
	RespondMappedError(c, errors.New("connection reset"), testRules)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "服务器内部错误", decodeError(t, w).Error)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestContextHelpers(t *testing.T) {
	c, _ := newTestContext("/api/orders/12?page=3&page_size=500", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Request.Header.Set("Authorization", "Bearer  tok-1 ")
	c.Set(ContextKeyUserID, uint(7))
	c.Set(ContextKeyBalanceID, " user_7 ")

	id, ok := ParamUint(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	page, size := QueryPagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, size)

	uid, ok := ContextUint(c, ContextKeyUserID)
	assert.True(t, ok)
	assert.Equal(t, uint(7), uid)
	_, ok = ContextUint(c, ContextKeyAdminID)
	assert.False(t, ok)

	assert.Equal(t, "user_7", ContextString(c, ContextKeyBalanceID))
	assert.Equal(t, "tok-1", BearerToken(c))
}
