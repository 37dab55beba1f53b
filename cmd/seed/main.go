package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(models.DBOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Mode:   cfg.Server.Mode,
		Pool: models.DBPoolConfig{
			MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
		},
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	productRepo := repository.NewProductRepository(models.DB)
	productSvc := service.NewProductService(productRepo)
	cardSvc := service.NewCardService(repository.NewProductCardRepository(models.DB), productRepo)
	couponSvc := service.NewCouponAdminService(repository.NewCouponRepository(models.DB))

	existing, total, err := productSvc.ListAdmin(1, 1, "")
	if err != nil {
		stdLog.Fatalf("Failed to list products: %v", err)
	}
	if total > 0 {
		stdLog.Printf("Products already seeded (first: %s), skip", existing[0].Name)
		return
	}

	limit := 2
	stock := 50
	presaleAt := time.Now().Add(72 * time.Hour)
	products := []service.ProductInput{
		{
			Name:            "Steam 充值卡 100",
			Price:           money(95),
			Description:     "自动发卡，付款确认后即时交付",
			Tags:            []string{"game", "card"},
			UseCardDelivery: true,
			MaxPerUser:      &limit,
		},
		{
			Name:          "余额卡 50",
			Price:         money(50),
			Description:   "购买后生成兑换码，可自用或赠送",
			Tags:          []string{"balance"},
			IsBalanceCard: true,
			CardValue:     money(50),
		},
		{
			Name:        "限量周边 T 恤",
			Price:       money(129),
			Description: "实物商品，人工发货",
			Tags:        []string{"merch"},
			TotalStock:  &stock,
		},
		{
			Name:             "新品预售",
			Price:            money(199),
			Tags:             []string{"presale"},
			IsPresale:        true,
			PresaleStartTime: &presaleAt,
		},
	}
	for _, input := range products {
		product, err := productSvc.Create(input)
		if err != nil {
			stdLog.Fatalf("Failed to create product %s: %v", input.Name, err)
		}
		stdLog.Printf("Created product: %s (#%d)", product.Name, product.ID)
		if !product.UseCardDelivery {
			continue
		}
		codes := make([]string, 0, 10)
		for i := 1; i <= 10; i++ {
			codes = append(codes, fmt.Sprintf("DEMO-%d-%04d", product.ID, i))
		}
		result, err := cardSvc.Import(ctx, product.ID, codes)
		if err != nil {
			stdLog.Fatalf("Failed to import cards: %v", err)
		}
		stdLog.Printf("Imported %d cards for %s", result.Added, product.Name)
	}

	maxUses := 100
	coupons := []service.CouponInput{
		{Code: "WELCOME10", DiscountType: constants.CouponTypePercentage, DiscountValue: money(10), MaxUses: &maxUses},
		{Code: "MINUS5", DiscountType: constants.CouponTypeFixed, DiscountValue: money(5)},
	}
	for _, input := range coupons {
		if _, err := couponSvc.Create(ctx, input); err != nil && !errors.Is(err, service.ErrCouponCodeExists) {
			stdLog.Fatalf("Failed to create coupon %s: %v", input.Code, err)
		}
		stdLog.Printf("Created coupon: %s", input.Code)
	}
}

func money(v int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(v))
}
