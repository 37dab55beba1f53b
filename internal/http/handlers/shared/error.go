package shared

import (
	"errors"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/i18n"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorRule 业务错误到 HTTP 状态与消息键的映射
type ErrorRule struct {
	Target error
	Code   int
	Key    string
}

// RequestLog 请求级日志，带 request_id
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil || c.Request == nil {
		return logger.S()
	}
	return logger.FromContext(c.Request.Context())
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c).With(
			"code", appErr.Status,
			"message", appErr.Message,
			"error", err,
		)
		if appErr.IsServerError() {
			log.Errorw("handler_error")
		} else {
			log.Debugw("handler_rejected")
		}
	}
	response.Error(c, appErr.Status, appErr.Message)
}

// RespondMappedError 按规则表匹配错误，未命中时按 500 返回通用提示。
// 中文环境下优先使用业务层携带的动态提示（例如带商品名的库存不足）。
func RespondMappedError(c *gin.Context, err error, rules ...[]ErrorRule) {
	for _, group := range rules {
		for _, rule := range group {
			if rule.Target == nil || !errors.Is(err, rule.Target) {
				continue
			}
			locale := i18n.ResolveLocale(c)
			if msg := service.UserMessage(err); msg != "" && locale == i18n.LocaleZhCN {
				RespondErrorWithMsg(c, rule.Code, msg, err)
				return
			}
			RespondErrorWithMsg(c, rule.Code, i18n.T(locale, rule.Key), err)
			return
		}
	}
	RespondError(c, response.CodeInternal, "error.internal", err)
}
