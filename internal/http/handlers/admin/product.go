package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Name             string       `json:"name" binding:"required"`
	Price            models.Money `json:"price"`
	ImageURL         string       `json:"image_url"`
	Description      string       `json:"description"`
	Tags             []string     `json:"tags"`
	UseCardDelivery  bool         `json:"use_card_delivery"`
	MaxPerUser       *int         `json:"max_per_user"`
	TotalStock       *int         `json:"total_stock"`
	SaleEndTime      *time.Time   `json:"sale_end_time"`
	IsPresale        bool         `json:"is_presale"`
	PresaleStartTime *time.Time   `json:"presale_start_time"`
	IsBalanceCard    bool         `json:"is_balance_card"`
	CardValue        models.Money `json:"card_value"`
	IsActive         *bool        `json:"is_active"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:             r.Name,
		Price:            r.Price,
		ImageURL:         r.ImageURL,
		Description:      r.Description,
		Tags:             r.Tags,
		UseCardDelivery:  r.UseCardDelivery,
		MaxPerUser:       r.MaxPerUser,
		TotalStock:       r.TotalStock,
		SaleEndTime:      r.SaleEndTime,
		IsPresale:        r.IsPresale,
		PresaleStartTime: r.PresaleStartTime,
		IsBalanceCard:    r.IsBalanceCard,
		CardValue:        r.CardValue,
		IsActive:         r.IsActive,
	}
}

// ListProducts 商品列表（含下架）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	products, total, err := h.ProductService.ListAdmin(page, pageSize, strings.TrimSpace(c.Query("search")))
	if err != nil {
		respondMapped(c, err, productErrorRules)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondMapped(c, err, productErrorRules)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondMapped(c, err, productErrorRules)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondMapped(c, err, productErrorRules)
		return
	}
	response.Success(c, gin.H{"success": true})
}
