package public

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}

// resolveIdentity 已登录时使用账号余额身份，否则使用客户端传入的设备ID
func resolveIdentity(c *gin.Context, clientUserID string) (string, bool) {
	if balanceID := shared.ContextString(c, shared.ContextKeyBalanceID); balanceID != "" {
		return balanceID, true
	}
	userID := strings.TrimSpace(clientUserID)
	if userID == "" {
		respondError(c, response.CodeBadRequest, "error.user_id_required", nil)
		return "", false
	}
	return userID, true
}

// parseOrderID 解析路径中的订单 ID
func parseOrderID(c *gin.Context) (uint, bool) {
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}
