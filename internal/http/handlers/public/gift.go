package public

import (
	"strconv"

	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// GiftCreateRequest 从已支付的消费卡订单生成兑换码
type GiftCreateRequest struct {
	CardValue models.Money `json:"cardValue"`
	OrderID   *uint        `json:"orderId"`
	IsGift    bool         `json:"isGift"`
	UserID    string       `json:"userId"`
}

// GiftRedeemRequest 兑换请求
type GiftRedeemRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"userId"`
}

// CreateGiftCode 生成礼品码
func (h *Handler) CreateGiftCode(c *gin.Context) {
	var req GiftCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	result, err := h.GiftCodeService.Create(c.Request.Context(), service.GiftCreateInput{
		CardValue: req.CardValue,
		OrderID:   req.OrderID,
		IsGift:    req.IsGift,
		UserID:    userID,
	})
	if err != nil {
		shared.RespondMappedError(c, err, giftErrorRules)
		return
	}
	response.Success(c, result)
}

// RedeemGiftCode 兑换礼品码，登录用户记录兑换账号
func (h *Handler) RedeemGiftCode(c *gin.Context) {
	var req GiftRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := resolveIdentity(c, req.UserID)
	if !ok {
		return
	}
	input := service.GiftRedeemInput{Code: req.Code, UserID: userID}
	if uid, ok := shared.ContextUint(c, shared.ContextKeyUserID); ok {
		input.RecipientUserID = strconv.FormatUint(uint64(uid), 10)
	}
	result, err := h.GiftCodeService.Redeem(c.Request.Context(), input)
	if err != nil {
		shared.RespondMappedError(c, err, giftErrorRules)
		return
	}
	response.Success(c, result)
}

// ListMyGiftCodes 我生成的兑换码
func (h *Handler) ListMyGiftCodes(c *gin.Context) {
	userID, ok := resolveIdentity(c, c.Query("userId"))
	if !ok {
		return
	}
	codes, err := h.GiftCodeService.ListByCreator(userID)
	if err != nil {
		shared.RespondMappedError(c, err, giftErrorRules)
		return
	}
	response.Success(c, gin.H{"codes": codes})
}
