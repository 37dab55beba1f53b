package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

// ImportCardsRequest 批量导入卡密，codes 与按行分隔的 text 二选一
type ImportCardsRequest struct {
	ProductID uint     `json:"product_id" binding:"required"`
	Codes     []string `json:"codes"`
	Text      string   `json:"text"`
}

// BatchDeleteCardsRequest 批量删除卡密
type BatchDeleteCardsRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// ImportCards 导入卡密
func (h *Handler) ImportCards(c *gin.Context) {
	var req ImportCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	codes := req.Codes
	if strings.TrimSpace(req.Text) != "" {
		codes = append(codes, strings.Split(strings.ReplaceAll(req.Text, "\r\n", "\n"), "\n")...)
	}
	result, err := h.CardService.Import(c.Request.Context(), req.ProductID, codes)
	if err != nil {
		respondMapped(c, err, cardErrorRules)
		return
	}
	requestLog(c).Infow("admin_cards_imported",
		"operator", currentUsername(c),
		"product_id", req.ProductID,
		"added", result.Added,
		"skipped", result.Skipped,
	)
	response.Success(c, result)
}

// GetCardStats 各商品卡密库存
func (h *Handler) GetCardStats(c *gin.Context) {
	stats, err := h.CardService.Stats(c.Request.Context())
	if err != nil {
		respondMapped(c, err, cardErrorRules)
		return
	}
	response.Success(c, gin.H{"stats": stats})
}

// ListProductCards 指定商品的卡密列表
func (h *Handler) ListProductCards(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	cards, total, err := h.CardService.ListByProduct(repository.CardListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: productID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondMapped(c, err, cardErrorRules)
		return
	}
	response.SuccessWithPage(c, cards, response.BuildPagination(page, pageSize, total))
}

// BatchDeleteCards 批量删除未售出的卡密
func (h *Handler) BatchDeleteCards(c *gin.Context) {
	var req BatchDeleteCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	deleted, err := h.CardService.BatchDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondMapped(c, err, cardErrorRules)
		return
	}
	response.Success(c, gin.H{"success": true, "deleted": deleted})
}

// DeleteCard 删除单个卡密
func (h *Handler) DeleteCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CardService.Delete(c.Request.Context(), id); err != nil {
		respondMapped(c, err, cardErrorRules)
		return
	}
	response.Success(c, gin.H{"success": true})
}
