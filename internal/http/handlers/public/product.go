package public

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts 上架商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	products, total, err := h.ProductService.ListPublic(page, pageSize, strings.TrimSpace(c.Query("search")))
	if err != nil {
		shared.RespondMappedError(c, err, productErrorRules)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := shared.ParamUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.GetPublic(id)
	if err != nil {
		shared.RespondMappedError(c, err, productErrorRules)
		return
	}
	response.Success(c, product)
}
