package public

import (
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/i18n"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求，price 仅用于与服务端价格比对
type OrderItemRequest struct {
	ProductID uint          `json:"productId" binding:"required"`
	Quantity  int           `json:"quantity" binding:"required"`
	Price     *models.Money `json:"price"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items             []OrderItemRequest `json:"items" binding:"required"`
	UserID            string             `json:"userId"`
	Email             string             `json:"email"`
	Country           string             `json:"country"`
	AddressLine1      string             `json:"addressLine1"`
	AddressLine2      string             `json:"addressLine2"`
	Notes             string             `json:"notes"`
	CouponCode        string             `json:"couponCode"`
	DiscountAmount    *models.Money      `json:"discountAmount"`
	FinalPrice        *models.Money      `json:"finalPrice"`
	UseBalance        bool               `json:"useBalance"`
	BalanceAmount     models.Money       `json:"balanceAmount"`
	DeviceFingerprint string             `json:"deviceFingerprint"`
	shared.CaptchaPayloadRequest
}

// OrderAccessBody 携带订单与访问者身份的请求
type OrderAccessBody struct {
	OrderID           uint   `json:"orderId" binding:"required"`
	UserID            string `json:"userId"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// PaymentInfoRequest 买家补充付款信息
type PaymentInfoRequest struct {
	OrderAccessBody
	PaymentInfo map[string]interface{} `json:"paymentInfo" binding:"required"`
}

// UserOrdersRequest 查询订单列表请求
type UserOrdersRequest struct {
	UserID string `json:"userId"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	if err := h.CaptchaService.Verify(c.Request.Context(), constants.CaptchaSceneCreateOrder, req.ToServicePayload(), c.ClientIP()); err != nil {
		shared.RespondMappedError(c, err, captchaErrorRules)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	result, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:            userID,
		Items:             items,
		Email:             req.Email,
		Country:           req.Country,
		AddressLine1:      req.AddressLine1,
		AddressLine2:      req.AddressLine2,
		Notes:             req.Notes,
		CouponCode:        req.CouponCode,
		ClientDiscount:    req.DiscountAmount,
		ClientFinalPrice:  req.FinalPrice,
		UseBalance:        req.UseBalance,
		BalanceAmount:     req.BalanceAmount,
		ClientIP:          c.ClientIP(),
		DeviceFingerprint: req.DeviceFingerprint,
	})
	if err != nil {
		shared.RespondMappedError(c, err, orderCreateErrorRules)
		return
	}
	response.Success(c, result)
}

// GetOrderStatus 查询订单状态
func (h *Handler) GetOrderStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	status, err := h.OrderService.GetStatus(orderID)
	if err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	response.Success(c, gin.H{"status": status})
}

// GetOrder 订单详情，仅下单身份可查看
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	userID, ok := resolveIdentity(c, c.Query("userId"))
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(h.accessRequest(c, orderID, userID, c.Query("deviceFingerprint")))
	if err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	response.Success(c, order)
}

// ListUserOrders 查询当前身份的订单
func (h *Handler) ListUserOrders(c *gin.Context) {
	var req UserOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListUserOrders(userID)
	if err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// VerifyOrderAccess 校验订单归属，非本人访问返回 403
func (h *Handler) VerifyOrderAccess(c *gin.Context) {
	var req OrderAccessBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	verdict, err := h.OrderService.VerifyAccess(h.accessRequest(c, req.OrderID, userID, req.DeviceFingerprint))
	if err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	if !verdict.Authorized {
		c.JSON(response.CodeForbidden, gin.H{
			"error":      i18n.T(i18n.ResolveLocale(c), "error.order_forbidden"),
			"authorized": false,
			"suspicious": verdict.Suspicious,
			"reason":     verdict.Reason,
		})
		return
	}
	response.Success(c, verdict)
}

// SavePaymentInfo 保存买家付款信息
func (h *Handler) SavePaymentInfo(c *gin.Context) {
	var req PaymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	if err := h.OrderService.SavePaymentInfo(h.accessRequest(c, req.OrderID, userID, req.DeviceFingerprint), req.PaymentInfo); err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	response.Success(c, gin.H{"success": true})
}

// GetPaymentInfo 读取买家付款信息
func (h *Handler) GetPaymentInfo(c *gin.Context) {
	orderID, ok := shared.ParseUint(c.Query("orderId"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, ok := resolveIdentity(c, c.Query("userId"))
	if !ok {
		return
	}
	info, err := h.OrderService.GetPaymentInfo(h.accessRequest(c, orderID, userID, c.Query("deviceFingerprint")))
	if err != nil {
		shared.RespondMappedError(c, err, orderQueryErrorRules)
		return
	}
	response.Success(c, gin.H{"paymentInfo": info})
}

func (h *Handler) accessRequest(c *gin.Context, orderID uint, userID, deviceFingerprint string) service.OrderAccessRequest {
	return service.OrderAccessRequest{
		OrderID:           orderID,
		UserID:            userID,
		DeviceFingerprint: deviceFingerprint,
		ClientIP:          c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	}
}
