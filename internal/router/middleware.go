package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/i18n"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// SessionHeader 前台会话 token 的备用请求头，Authorization: Bearer 优先
const SessionHeader = "X-Session-Token"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Authorization",
			"Accept-Language",
			requestIDHeader,
			SessionHeader,
			"X-Device-Fingerprint",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		allowedOrigin := resolveAllowedOrigin(c.GetHeader("Origin"), allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(shared.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), "request_id", requestID))
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := sugar.With(
			"request_id", shared.ContextString(c, shared.ContextKeyRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			fields.Errorw("request", "errors", c.Errors.String())
			return
		}
		fields.Infow("request")
	}
}

// sessionToken 读取前台会话 token
func sessionToken(c *gin.Context) string {
	if token := shared.BearerToken(c); token != "" {
		return token
	}
	return strings.TrimSpace(c.GetHeader(SessionHeader))
}

// UserSessionMiddleware 解析前台会话；required 为 false 时无会话或会话失效都按匿名放行
func UserSessionMiddleware(userAuth *service.UserAuthService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			if required {
				abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
				return
			}
			c.Next()
			return
		}
		state, err := userAuth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !required {
				c.Next()
				return
			}
			switch {
			case errors.Is(err, service.ErrUserDisabled):
				abortWithKey(c, response.CodeForbidden, "error.user_disabled")
			case errors.Is(err, service.ErrSessionInvalid):
				abortWithKey(c, response.CodeUnauthorized, "error.session_invalid")
			default:
				logger.Errorw("user_session_authenticate_failed", "error", err)
				abortWithKey(c, response.CodeInternal, "error.internal")
			}
			return
		}
		c.Set(shared.ContextKeyUserID, state.UserID)
		c.Set(shared.ContextKeyBalanceID, service.AccountBalanceID(state.UserID))
		c.Set(shared.ContextKeySessionToken, token)
		c.Next()
	}
}

// AdminAuthMiddleware 管理端 JWT 鉴权中间件
func AdminAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := shared.BearerToken(c)
		if token == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		admin, _, err := authService.Authenticate(token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				logger.Warnw("admin_authenticate_failed", "error", err)
			}
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		setAdminContext(c, admin)
		c.Next()
	}
}

func setAdminContext(c *gin.Context, admin *models.Admin) {
	c.Set(shared.ContextKeyAdminID, admin.ID)
	c.Set(shared.ContextKeyAdminName, admin.Username)
	c.Set(shared.ContextKeyAdminIsSuper, admin.IsSuper)
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSuper, ok := c.Get(shared.ContextKeyAdminIsSuper); ok {
			if superValue, typeOK := isSuper.(bool); typeOK && superValue {
				c.Next()
				return
			}
		}
		adminID, ok := shared.ContextUint(c, shared.ContextKeyAdminID)
		if !ok {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortWithKey(c, response.CodeInternal, "error.internal")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}

func abortWithKey(c *gin.Context, status int, key string) {
	response.Error(c, status, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}
