package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// PricingLine 待计价的订单行，Product 为服务端加载的商品
type PricingLine struct {
	Product     *models.Product
	Quantity    int
	ClientPrice *models.Money
}

// PricedLine 计价后的订单行
type PricedLine struct {
	Product   *models.Product
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// Totals 订单金额汇总
type Totals struct {
	Lines    []PricedLine
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
	Coupon   *models.Coupon
}

// PricingService 订单计价与优惠码服务
type PricingService struct {
	couponRepo repository.CouponRepository
}

// NewPricingService 创建计价服务
func NewPricingService(couponRepo repository.CouponRepository) *PricingService {
	return &PricingService{couponRepo: couponRepo}
}

// ComputeTotals 以商品目录价格计算小计、优惠与应付金额，客户端价格只用于比对
func (s *PricingService) ComputeTotals(tx *gorm.DB, lines []PricingLine, couponCode string, now time.Time) (*Totals, error) {
	totals := &Totals{Lines: make([]PricedLine, 0, len(lines))}
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Product == nil || line.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		unit := line.Product.Price.Decimal.Round(2)
		if line.ClientPrice != nil && !line.ClientPrice.Decimal.Round(2).Equal(unit) {
			logger.Warnw("order_client_price_mismatch",
				"product_id", line.Product.ID,
				"client_price", line.ClientPrice.String(),
				"catalog_price", unit.StringFixed(2),
			)
		}
		amount := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		subtotal = subtotal.Add(amount)
		totals.Lines = append(totals.Lines, PricedLine{
			Product:   line.Product,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Amount:    amount,
		})
	}
	totals.Subtotal = subtotal.Round(2)
	totals.Final = totals.Subtotal
	totals.Discount = decimal.Zero

	code := strings.TrimSpace(couponCode)
	if code == "" {
		return totals, nil
	}
	coupon, err := s.couponRepo.WithTx(tx).GetActiveByCode(code)
	if err != nil {
		return nil, err
	}
	if err := ValidateCoupon(coupon, now); err != nil {
		return nil, err
	}
	totals.Coupon = coupon
	totals.Final, totals.Discount = ApplyCouponDiscount(totals.Subtotal, coupon)
	return totals, nil
}

// ValidateCoupon 校验优惠码启用状态、有效期与使用次数
func ValidateCoupon(coupon *models.Coupon, now time.Time) error {
	if coupon == nil || !coupon.IsActive {
		return ErrCouponInvalid
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return ErrCouponInvalid
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return ErrCouponInvalid
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return ErrCouponInvalid
	}
	return nil
}

// ApplyCouponDiscount 计算使用优惠码后的应付金额与优惠金额，结果不小于 0
func ApplyCouponDiscount(subtotal decimal.Decimal, coupon *models.Coupon) (decimal.Decimal, decimal.Decimal) {
	subtotal = subtotal.Round(2)
	if coupon == nil {
		return subtotal, decimal.Zero
	}
	value := coupon.DiscountValue.Decimal
	var final decimal.Decimal
	switch coupon.DiscountType {
	case constants.CouponTypePercentage:
		final = subtotal.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case constants.CouponTypeFixed:
		final = subtotal.Sub(value)
	default:
		final = subtotal
	}
	if final.LessThan(decimal.Zero) {
		final = decimal.Zero
	}
	final = final.Round(2)
	return final, subtotal.Sub(final).Round(2)
}
