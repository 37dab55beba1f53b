package shared

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// 中间件写入的上下文键
const (
	ContextKeyRequestID    = "request_id"
	ContextKeyUserID       = "user_id"
	ContextKeyBalanceID    = "balance_id"
	ContextKeySessionToken = "session_token"
	ContextKeyAdminID      = "admin_id"
	ContextKeyAdminName    = "admin_username"
	ContextKeyAdminIsSuper = "admin_is_super"
)

// ContextUint 从上下文读取 uint 值，不存在或非法时返回 false
func ContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

// ContextString 从上下文读取字符串
func ContextString(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

// BearerToken 读取 Authorization: Bearer <token>
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
