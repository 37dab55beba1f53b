package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

// ConfirmPaymentRequest 商户核销付款码
type ConfirmPaymentRequest struct {
	PaymentCode string `json:"paymentCode" binding:"required"`
}

// ConfirmPayment 商户确认付款并分配卡密
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.OrderService.ConfirmPayment(c.Request.Context(), req.PaymentCode)
	if err != nil {
		respondMapped(c, err, orderErrorRules)
		return
	}
	requestLog(c).Infow("admin_payment_confirmed",
		"operator", currentUsername(c),
		"order_id", result.OrderID,
		"card_count", len(result.CardCodes),
	)
	response.Success(c, result)
}

// ListOrders 后台订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.OrderListFilter{
		Page:           page,
		PageSize:       pageSize,
		UserID:         strings.TrimSpace(c.Query("user_id")),
		Status:         strings.TrimSpace(c.Query("status")),
		PaymentCode:    strings.TrimSpace(c.Query("payment_code")),
		Email:          strings.TrimSpace(c.Query("email")),
		DeliveryStatus: strings.TrimSpace(c.Query("delivery_status")),
	}
	var ok bool
	if filter.CreatedFrom, ok = parseTimeQuery(c, "created_from"); !ok {
		return
	}
	if filter.CreatedTo, ok = parseTimeQuery(c, "created_to"); !ok {
		return
	}
	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondMapped(c, err, orderErrorRules)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// CancelOrder 取消待付款订单并归还库存与余额
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondMapped(c, err, orderErrorRules)
		return
	}
	requestLog(c).Infow("admin_order_cancelled", "operator", currentUsername(c), "order_id", id)
	response.Success(c, order)
}

// RetryFulfillment 卡密补货后重新分配
func (h *Handler) RetryFulfillment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, result, err := h.OrderService.RetryFulfillment(c.Request.Context(), id)
	if err != nil {
		respondMapped(c, err, orderErrorRules)
		return
	}
	response.Success(c, gin.H{
		"order":           order,
		"card_codes":      result.CardCodes,
		"delivery_status": result.DeliveryStatus,
	})
}

// ListSuspiciousAccess 可疑订单访问记录
func (h *Handler) ListSuspiciousAccess(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.OrderAccessAuditListFilter{
		Page:           page,
		PageSize:       pageSize,
		UserID:         strings.TrimSpace(c.Query("user_id")),
		OnlySuspicious: true,
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		id, ok := handlershared.ParseUint(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.OrderID = id
	}
	audits, total, err := h.OrderAccessService.ListSuspicious(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, audits, response.BuildPagination(page, pageSize, total))
}

// parseTimeQuery 支持 RFC3339 与 2006-01-02
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t, true
		}
	}
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	return nil, false
}
