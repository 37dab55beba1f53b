package router

import (
	"sort"
	"strings"

	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	adminhandlers "github.com/dujiao-next/storefront/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/storefront/internal/http/handlers/public"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	limiter := NewRedisLimiter(cache.Client())
	loginRule := NewRateLimitRule(cache.BuildKey("rate:login"), cfg.Security.LoginRateLimit, "error.login_too_many")
	adminLoginRule := NewRateLimitRule(cache.BuildKey("rate:admin_login"), cfg.Security.LoginRateLimit, "error.login_too_many")
	orderRule := NewRateLimitRule(cache.BuildKey("rate:order"), cfg.Security.OrderRateLimit, "error.order_too_many")
	redeemRule := NewRateLimitRule(cache.BuildKey("rate:redeem"), cfg.Security.RedeemRateLimit, "error.redeem_too_many")

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	adminAuth := []gin.HandlerFunc{AdminAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService)}

	api := r.Group("/api")
	{
		// 买家接口：会话可选，未登录时以设备ID作为身份
		buyer := api.Group("")
		buyer.Use(UserSessionMiddleware(c.UserAuthService, false))
		{
			buyer.GET("/products", publicHandler.ListProducts)
			buyer.GET("/products/:id", publicHandler.GetProduct)
			buyer.GET("/captcha/config", publicHandler.GetCaptchaConfig)
			buyer.GET("/captcha/image", publicHandler.GetImageCaptcha)
			buyer.POST("/coupons/validate", publicHandler.ValidateCoupon)

			buyer.POST("/orders", RateLimitMiddleware(limiter, orderRule, KeyBySessionOrIP), publicHandler.CreateOrder)
			buyer.GET("/orders/:id/status", publicHandler.GetOrderStatus)
			buyer.GET("/orders/:id", publicHandler.GetOrder)
			buyer.POST("/orders/user", publicHandler.ListUserOrders)
			buyer.POST("/orders/verify", publicHandler.VerifyOrderAccess)
			buyer.POST("/orders/payment-info", publicHandler.SavePaymentInfo)
			buyer.GET("/orders/payment-info", publicHandler.GetPaymentInfo)

			buyer.POST("/gift/create", publicHandler.CreateGiftCode)
			buyer.POST("/gift/redeem", RateLimitMiddleware(limiter, redeemRule, KeyBySessionOrIP), publicHandler.RedeemGiftCode)
			buyer.GET("/gift/my-codes", publicHandler.ListMyGiftCodes)

			buyer.GET("/balance", publicHandler.GetBalance)
			buyer.GET("/balance/transactions", publicHandler.ListBalanceTransactions)

			buyer.POST("/auth/register", RateLimitMiddleware(limiter, loginRule, KeyByIP), publicHandler.Register)
			buyer.POST("/auth/login", RateLimitMiddleware(limiter, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			buyer.GET("/auth/me", publicHandler.GetMe)
		}
		api.DELETE("/auth/me", UserSessionMiddleware(c.UserAuthService, true), publicHandler.Logout)

		// 付款码核销沿用旧路径，鉴权与后台一致
		api.POST("/orders/confirm", append(adminAuth, adminHandler.ConfirmPayment)...)

		admin := api.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(limiter, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(adminAuth...)
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/permissions", func(ctx *gin.Context) {
					response.Success(ctx, gin.H{"items": buildAdminPermissionCatalog(r)})
				})
				authorized.GET("/admins", adminHandler.ListAdmins)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)

				authorized.POST("/orders/confirm", adminHandler.ConfirmPayment)
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.POST("/orders/:id/cancel", adminHandler.CancelOrder)
				authorized.POST("/orders/:id/fulfill", adminHandler.RetryFulfillment)
				authorized.GET("/order-access/suspicious", adminHandler.ListSuspiciousAccess)

				authorized.GET("/products", adminHandler.ListProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/coupons", adminHandler.ListCoupons)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				authorized.POST("/cards", adminHandler.ImportCards)
				authorized.GET("/cards/stats", adminHandler.GetCardStats)
				authorized.GET("/cards/products/:productId", adminHandler.ListProductCards)
				authorized.POST("/cards/batch-delete", adminHandler.BatchDeleteCards)
				authorized.DELETE("/cards/:id", adminHandler.DeleteCard)

				authorized.POST("/balance/recharge", adminHandler.RechargeBalance)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由推导可授权的后台权限
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/admin/") && item.Path != "/api/orders/confirm" {
			continue
		}
		if item.Path == "/api/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

// deriveAdminPermissionModule /admin/cards/stats -> cards，/orders/confirm -> orders
func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if segments[0] != "admin" || len(segments) == 1 {
		return segments[0]
	}
	return segments[1]
}
