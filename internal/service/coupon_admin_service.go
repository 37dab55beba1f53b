package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠码管理服务
type CouponAdminService struct {
	repo repository.CouponRepository
}

// NewCouponAdminService 创建优惠码管理服务
func NewCouponAdminService(repo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo}
}

// CouponInput 创建/更新优惠码输入
type CouponInput struct {
	Code          string
	DiscountType  string
	DiscountValue models.Money
	MaxUses       *int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      *bool
}

// List 优惠码列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	filter.Page, filter.PageSize = repository.NormalizePagination(filter.Page, filter.PageSize)
	return s.repo.List(filter)
}

// Create 创建优惠码
func (s *CouponAdminService) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(coupon.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponCodeExists
	}
	coupon.IsActive = true
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		coupon.IsActive = false
		if err := s.repo.Update(coupon); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx, coupon.Code)
	logger.Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code)
	return coupon, nil
}

// Update 更新优惠码，改码时检查重复
func (s *CouponAdminService) Update(ctx context.Context, id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	oldCode := coupon.Code
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	if coupon.Code != oldCode {
		existing, err := s.repo.GetByCode(coupon.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != coupon.ID {
			return nil, ErrCouponCodeExists
		}
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	coupon.UpdatedAt = time.Now()
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldCode, coupon.Code)
	return coupon, nil
}

// Delete 删除优惠码
func (s *CouponAdminService) Delete(ctx context.Context, id uint) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, coupon.Code)
	return nil
}

func (s *CouponAdminService) invalidate(ctx context.Context, codes ...string) {
	if err := cache.InvalidateCoupon(ctx, codes...); err != nil {
		logger.Warnw("coupon_cache_invalidate_failed", "codes", codes, "error", err)
	}
}

func applyCouponInput(coupon *models.Coupon, input CouponInput) error {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return ErrCouponValueInvalid
	}
	value := input.DiscountValue.Decimal.Round(2)
	if value.LessThanOrEqual(decimal.Zero) {
		return ErrCouponValueInvalid
	}
	switch strings.TrimSpace(input.DiscountType) {
	case constants.CouponTypePercentage:
		if value.GreaterThan(hundred) {
			return ErrCouponValueInvalid
		}
	case constants.CouponTypeFixed:
	default:
		return ErrCouponValueInvalid
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return ErrCouponValueInvalid
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return ErrCouponValueInvalid
	}
	coupon.Code = code
	coupon.DiscountType = strings.TrimSpace(input.DiscountType)
	coupon.DiscountValue = models.NewMoneyFromDecimal(value)
	coupon.MaxUses = input.MaxUses
	coupon.ValidFrom = input.ValidFrom
	coupon.ValidUntil = input.ValidUntil
	return nil
}
