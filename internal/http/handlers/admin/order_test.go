package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type adminHandlerTestEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	orders *service.OrderService
}

func setupAdminHandlerTest(t *testing.T) *adminHandlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cardRepo := repository.NewProductCardRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	balanceSvc := service.NewBalanceService(repository.NewBalanceRepository(db))
	orderSvc := service.NewOrderService(service.OrderServiceOptions{
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		CouponRepo:     couponRepo,
		Checker:        service.NewInventoryChecker(orderRepo),
		Pricing:        service.NewPricingService(couponRepo),
		BalanceSvc:     balanceSvc,
		FulfillmentSvc: service.NewOrderFulfillmentService(productRepo, cardRepo, orderRepo, balanceSvc),
		AccessSvc:      service.NewOrderAccessService(orderRepo, repository.NewOrderAccessAuditRepository(db)),
	})
	h := New(&provider.Container{
		Config:         &config.Config{},
		BalanceService: balanceSvc,
		OrderService:   orderSvc,
	})

	engine := gin.New()
	api := engine.Group("/api", func(c *gin.Context) {
		c.Set(handlershared.ContextKeyAdminID, uint(1))
		c.Set(handlershared.ContextKeyAdminName, "merchant")
		c.Next()
	})
	api.POST("/orders/confirm", h.ConfirmPayment)
	api.POST("/admin/balance/recharge", h.RechargeBalance)
	return &adminHandlerTestEnv{engine: engine, db: db, orders: orderSvc}
}

func (env *adminHandlerTestEnv) perform(target string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "zh-CN")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decodeAdminError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestConfirmPaymentHandler(t *testing.T) {
	env := setupAdminHandlerTest(t)
	product := &models.Product{
		Name:            "Game Key",
		Price:           models.NewMoneyFromDecimal(decimal.RequireFromString("9.90")),
		IsActive:        true,
		UseCardDelivery: true,
	}
	require.NoError(t, env.db.Create(product).Error)
	require.NoError(t, env.db.Create(&models.ProductCard{
		ProductID: product.ID,
		CardCode:  "KEY-1",
		Status:    constants.CardStatusAvailable,
	}).Error)
	created, err := env.orders.CreateOrder(context.Background(), service.CreateOrderInput{
		UserID:       "device-a",
		Items:        []service.CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		Email:        "buyer@example.com",
		Country:      "CN",
		AddressLine1: "1 Test Road",
	})
	require.NoError(t, err)

	w := env.perform("/api/orders/confirm", gin.H{"paymentCode": "ZZZZ9999"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "付款码不存在", decodeAdminError(t, w))

	w = env.perform("/api/orders/confirm", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.perform("/api/orders/confirm", gin.H{"paymentCode": created.PaymentCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed service.ConfirmPaymentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &confirmed))
	assert.True(t, confirmed.Success)
	assert.Equal(t, created.OrderID, confirmed.OrderID)
	assert.Equal(t, []string{"KEY-1"}, confirmed.CardCodes)

	w = env.perform("/api/orders/confirm", gin.H{"paymentCode": created.PaymentCode})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "该订单已确认付款", decodeAdminError(t, w))

	var order models.Order
	require.NoError(t, env.db.First(&order, created.OrderID).Error)
	assert.Equal(t, constants.OrderStatusPaid, order.Status)
}

func TestRechargeBalanceHandler(t *testing.T) {
	env := setupAdminHandlerTest(t)

	w := env.perform("/api/admin/balance/recharge", gin.H{"amount": "10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.perform("/api/admin/balance/recharge", gin.H{"userId": "device-a", "amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "金额无效", decodeAdminError(t, w))

	w = env.perform("/api/admin/balance/recharge", gin.H{"userId": "device-a", "amount": "12.5", "description": "补偿"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Success     bool                      `json:"success"`
		Balance     models.Money              `json:"balance"`
		Transaction models.BalanceTransaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "12.50", body.Balance.String())
	assert.Equal(t, constants.BalanceTxnTypeRecharge, body.Transaction.Type)
}
