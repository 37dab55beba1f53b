package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// CouponService 面向前台的优惠码查询
type CouponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService 创建优惠码服务
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// Validate 查询可用优惠码，优先读取 Redis 缓存
func (s *CouponService) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponInvalid
	}
	var cached models.Coupon
	hit, err := cache.GetCoupon(ctx, code, &cached)
	if err != nil {
		logger.Warnw("coupon_cache_read_failed", "code", code, "error", err)
	}
	coupon := &cached
	if !hit {
		coupon, err = s.couponRepo.GetActiveByCode(code)
		if err != nil {
			return nil, err
		}
		if coupon != nil {
			if err := cache.SetCoupon(ctx, code, coupon); err != nil {
				logger.Warnw("coupon_cache_write_failed", "code", code, "error", err)
			}
		}
	}
	if err := ValidateCoupon(coupon, time.Now()); err != nil {
		return nil, err
	}
	return coupon, nil
}
