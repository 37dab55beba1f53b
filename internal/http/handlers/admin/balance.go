package admin

import (
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// RechargeRequest 手动充值请求
type RechargeRequest struct {
	UserID      string       `json:"userId" binding:"required"`
	Amount      models.Money `json:"amount"`
	OrderID     *uint        `json:"orderId"`
	Description string       `json:"description"`
}

// RechargeBalance 商户为用户手动充值
func (h *Handler) RechargeBalance(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, txn, err := h.BalanceService.AdminRecharge(service.AdminRechargeInput{
		UserID:      req.UserID,
		Amount:      req.Amount,
		OrderID:     req.OrderID,
		Description: req.Description,
	})
	if err != nil {
		respondMapped(c, err, balanceErrorRules)
		return
	}
	requestLog(c).Infow("admin_balance_recharged",
		"operator", currentUsername(c),
		"user_id", req.UserID,
		"amount", req.Amount.String(),
	)
	response.Success(c, gin.H{
		"success":     true,
		"balance":     account.Balance,
		"transaction": txn,
	})
}
