package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type publicHandlerTestEnv struct {
	engine  *gin.Engine
	db      *gorm.DB
	handler *Handler
}

// setupPublicHandlerTest 基于内存 sqlite 组装前台处理器与路由
// sessionUserID 非 0 时模拟已登录会话写入的上下文
func setupPublicHandlerTest(t *testing.T, sessionUserID uint) *publicHandlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db

	cfg := &config.Config{}
	cfg.App.URL = "https://shop.example.com"
	cfg.Captcha.Provider = "none"
	cfg.Captcha.Scenes.CreateOrder = true

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cardRepo := repository.NewProductCardRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	balanceSvc := service.NewBalanceService(repository.NewBalanceRepository(db))
	accessSvc := service.NewOrderAccessService(orderRepo, repository.NewOrderAccessAuditRepository(db))

	orderSvc := service.NewOrderService(service.OrderServiceOptions{
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		CouponRepo:     couponRepo,
		Checker:        service.NewInventoryChecker(orderRepo),
		Pricing:        service.NewPricingService(couponRepo),
		BalanceSvc:     balanceSvc,
		FulfillmentSvc: service.NewOrderFulfillmentService(productRepo, cardRepo, orderRepo, balanceSvc),
		AccessSvc:      accessSvc,
	})
	giftSvc := service.NewGiftCodeService(repository.NewGiftCodeRepository(db), orderRepo, productRepo, balanceSvc, cfg.App.URL, 0)
	h := New(&provider.Container{
		Config:          cfg,
		CaptchaService:  service.NewCaptchaService(cfg.Captcha),
		BalanceService:  balanceSvc,
		GiftCodeService: giftSvc,
		OrderService:    orderSvc,
	})

	engine := gin.New()
	api := engine.Group("/api")
	if sessionUserID != 0 {
		api.Use(func(c *gin.Context) {
			c.Set(shared.ContextKeyUserID, sessionUserID)
			c.Set(shared.ContextKeyBalanceID, service.AccountBalanceID(sessionUserID))
			c.Next()
		})
	}
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.POST("/gift/create", h.CreateGiftCode)
	api.POST("/gift/redeem", h.RedeemGiftCode)
	api.GET("/balance", h.GetBalance)
	return &publicHandlerTestEnv{engine: engine, db: db, handler: h}
}

func (env *publicHandlerTestEnv) createProduct(t *testing.T, name, price string, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsActive: true,
	}
	if mutate != nil {
		mutate(product)
	}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func (env *publicHandlerTestEnv) perform(method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "zh-CN")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}

func validOrderBody(productID uint, quantity int) gin.H {
	return gin.H{
		"items":          []gin.H{{"productId": productID, "quantity": quantity}},
		"userId":         "device-a",
		"email":          "buyer@example.com",
		"country":        "CN",
		"addressLine1":   "1 Test Road",
		"challengeToken": "token",
	}
}

func intPtr(v int) *int {
	return &v
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
