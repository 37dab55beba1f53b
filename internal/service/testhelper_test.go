package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	orders   *OrderService
	balance  *BalanceService
	gifts    *GiftCodeService
	cards    *CardService
	products *ProductService
	coupons  *CouponAdminService
	access   *OrderAccessService
	users    *UserAuthService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	cfg.Session.ExpireDays = 30
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 1

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cardRepo := repository.NewProductCardRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	giftRepo := repository.NewGiftCodeRepository(db)
	auditRepo := repository.NewOrderAccessAuditRepository(db)

	balanceSvc := NewBalanceService(balanceRepo)
	accessSvc := NewOrderAccessService(orderRepo, auditRepo)
	env := &serviceTestEnv{
		db:       db,
		cfg:      cfg,
		balance:  balanceSvc,
		gifts:    NewGiftCodeService(giftRepo, orderRepo, productRepo, balanceSvc, cfg.App.URL, 0),
		cards:    NewCardService(cardRepo, productRepo),
		products: NewProductService(productRepo),
		coupons:  NewCouponAdminService(couponRepo),
		access:   accessSvc,
		users:    NewUserAuthService(cfg, repository.NewUserRepository(db), repository.NewUserSessionRepository(db), balanceSvc),
	}
	env.orders = NewOrderService(OrderServiceOptions{
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		CouponRepo:     couponRepo,
		Checker:        NewInventoryChecker(orderRepo),
		Pricing:        NewPricingService(couponRepo),
		BalanceSvc:     balanceSvc,
		FulfillmentSvc: NewOrderFulfillmentService(productRepo, cardRepo, orderRepo, balanceSvc),
		AccessSvc:      accessSvc,
	})
	return env
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}

func intPtr(v int) *int {
	return &v
}

func (env *serviceTestEnv) createProduct(t *testing.T, name, price string, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Price:    money(price),
		IsActive: true,
	}
	if mutate != nil {
		mutate(product)
	}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func (env *serviceTestEnv) addCards(t *testing.T, productID uint, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, env.db.Create(&models.ProductCard{
			ProductID: productID,
			CardCode:  code,
			Status:    constants.CardStatusAvailable,
		}).Error)
	}
}

func (env *serviceTestEnv) createCoupon(t *testing.T, code, discountType, value string, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: money(value),
		IsActive:      true,
	}
	if mutate != nil {
		mutate(coupon)
	}
	require.NoError(t, env.db.Create(coupon).Error)
	return coupon
}

func (env *serviceTestEnv) seedBalance(t *testing.T, userID, amount string) {
	t.Helper()
	require.NoError(t, models.DB.Transaction(func(tx *gorm.DB) error {
		_, _, err := env.balance.CreditInTx(tx, BalanceChangeInput{
			UserID:      userID,
			Amount:      decimal.RequireFromString(amount),
			TxnType:     constants.BalanceTxnTypeRecharge,
			Reference:   "seed:" + userID + ":" + amount,
			Description: "seed",
		})
		return err
	}))
}

func (env *serviceTestEnv) balanceOf(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	account, err := env.balance.GetOrCreate(userID)
	require.NoError(t, err)
	return account.Balance.Decimal
}

func (env *serviceTestEnv) reloadProduct(t *testing.T, id uint) models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, env.db.First(&product, id).Error)
	return product
}

func orderInput(userID string, items ...CreateOrderItem) CreateOrderInput {
	return CreateOrderInput{
		UserID:       userID,
		Items:        items,
		Email:        "buyer@example.com",
		Country:      "CN",
		AddressLine1: "1 Test Road",
	}
}
