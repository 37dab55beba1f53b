package service

import (
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

// InventoryChecker 商品销售窗口、库存与限购校验（只读）
type InventoryChecker struct {
	orderRepo repository.OrderRepository
}

// NewInventoryChecker 创建库存校验器
func NewInventoryChecker(orderRepo repository.OrderRepository) *InventoryChecker {
	return &InventoryChecker{orderRepo: orderRepo}
}

// Check 校验用户能否购买 quantity 件商品，返回 nil 或 *CheckError
func (c *InventoryChecker) Check(tx *gorm.DB, product *models.Product, userID string, quantity int, now time.Time) error {
	if product == nil || !product.IsActive {
		return newCheckError(ErrProductNotFound, "商品不存在")
	}
	if product.SaleEndTime != nil && now.After(*product.SaleEndTime) {
		return newCheckError(ErrSaleEnded, "商品 %s 已停止销售", product.Name)
	}
	if product.IsPresale && product.PresaleStartTime != nil && now.Before(*product.PresaleStartTime) {
		return newCheckError(ErrPresaleNotStarted, "商品 %s 尚未开售", product.Name)
	}
	if product.TotalStock != nil && product.SoldCount+quantity > *product.TotalStock {
		return newCheckError(ErrOutOfStock, "商品%s库存不足", product.Name)
	}
	if product.MaxPerUser != nil {
		purchased, err := c.orderRepo.WithTx(tx).SumUserProductQuantity(userID, product.ID, []string{
			constants.OrderStatusPending,
			constants.OrderStatusPaid,
		})
		if err != nil {
			return err
		}
		if purchased+int64(quantity) > int64(*product.MaxPerUser) {
			return newCheckError(ErrPerUserLimitExceeded, "商品 %s 每人限购 %d 件，您已购买 %d 件", product.Name, *product.MaxPerUser, purchased)
		}
	}
	return nil
}
