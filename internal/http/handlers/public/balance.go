package public

import (
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetBalance 查询余额，不存在时创建零余额账户
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := resolveIdentity(c, c.Query("userId"))
	if !ok {
		return
	}
	account, err := h.BalanceService.GetOrCreate(userID)
	if err != nil {
		shared.RespondMappedError(c, err, balanceErrorRules)
		return
	}
	response.Success(c, gin.H{"balance": account.Balance, "userId": account.UserID})
}

// ListBalanceTransactions 最近的余额流水
func (h *Handler) ListBalanceTransactions(c *gin.Context) {
	userID, ok := resolveIdentity(c, c.Query("userId"))
	if !ok {
		return
	}
	txns, err := h.BalanceService.ListTransactions(userID)
	if err != nil {
		shared.RespondMappedError(c, err, balanceErrorRules)
		return
	}
	response.Success(c, gin.H{"transactions": txns})
}
