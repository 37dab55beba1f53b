package public

import (
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ValidateCouponRequest 校验优惠码请求
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCoupon 下单前预校验优惠码，不占用次数
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponService.Validate(c.Request.Context(), req.Code)
	if err != nil {
		shared.RespondMappedError(c, err, couponErrorRules)
		return
	}
	response.Success(c, gin.H{
		"valid":         true,
		"code":          coupon.Code,
		"discountType":  coupon.DiscountType,
		"discountValue": coupon.DiscountValue,
	})
}
