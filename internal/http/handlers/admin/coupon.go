package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 创建/更新优惠码请求
type CouponRequest struct {
	Code          string       `json:"code" binding:"required"`
	DiscountType  string       `json:"discount_type" binding:"required"`
	DiscountValue models.Money `json:"discount_value"`
	MaxUses       *int         `json:"max_uses"`
	ValidFrom     *time.Time   `json:"valid_from"`
	ValidUntil    *time.Time   `json:"valid_until"`
	IsActive      *bool        `json:"is_active"`
}

func (r CouponRequest) toInput() service.CouponInput {
	return service.CouponInput{
		Code:          r.Code,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		MaxUses:       r.MaxUses,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		IsActive:      r.IsActive,
	}
}

// ListCoupons 优惠码列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	})
	if err != nil {
		respondMapped(c, err, couponErrorRules)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// CreateCoupon 创建优惠码
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondMapped(c, err, couponErrorRules)
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠码
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondMapped(c, err, couponErrorRules)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠码
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(c.Request.Context(), id); err != nil {
		respondMapped(c, err, couponErrorRules)
		return
	}
	response.Success(c, gin.H{"success": true})
}
