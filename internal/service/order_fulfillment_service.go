package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const cardAllocationSavePoint = "card_allocation"

// FulfillmentResult 订单进入已支付后的交付结果
type FulfillmentResult struct {
	CardCodes       []string
	DeliveryStatus  string
	ShortageProduct uint
	BalanceCredited decimal.Decimal
}

// NeedsManualDelivery 卡密不足需人工补发
func (r *FulfillmentResult) NeedsManualDelivery() bool {
	return r != nil && r.DeliveryStatus == constants.DeliveryStatusManualRequired
}

// OrderFulfillmentService 已支付订单的统一交付：分配卡密、消费卡入账
type OrderFulfillmentService struct {
	productRepo repository.ProductRepository
	cardRepo    repository.ProductCardRepository
	orderRepo   repository.OrderRepository
	balanceSvc  *BalanceService
}

// NewOrderFulfillmentService 创建交付服务
func NewOrderFulfillmentService(
	productRepo repository.ProductRepository,
	cardRepo repository.ProductCardRepository,
	orderRepo repository.OrderRepository,
	balanceSvc *BalanceService,
) *OrderFulfillmentService {
	return &OrderFulfillmentService{
		productRepo: productRepo,
		cardRepo:    cardRepo,
		orderRepo:   orderRepo,
		balanceSvc:  balanceSvc,
	}
}

// OnEnterPaid 在订单事务内执行交付，order.Items 必须已加载
func (s *OrderFulfillmentService) OnEnterPaid(tx *gorm.DB, order *models.Order) (*FulfillmentResult, error) {
	if tx == nil || order == nil || order.ID == 0 {
		return nil, ErrOrderUpdateFailed
	}
	products, err := s.loadProducts(tx, order.Items)
	if err != nil {
		return nil, err
	}

	result, err := s.allocateCards(tx, order, products)
	if err != nil {
		return nil, err
	}
	credited, err := s.creditBalanceCards(tx, order, products)
	if err != nil {
		return nil, err
	}
	result.BalanceCredited = credited

	if err := s.orderRepo.WithTx(tx).Update(order.ID, map[string]interface{}{
		"card_codes":      strings.Join(result.CardCodes, ","),
		"delivery_status": result.DeliveryStatus,
		"updated_at":      time.Now(),
	}); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.CardCodes = strings.Join(result.CardCodes, ",")
	order.DeliveryStatus = result.DeliveryStatus
	return result, nil
}

func (s *OrderFulfillmentService) loadProducts(tx *gorm.DB, items []models.OrderItem) (map[uint]*models.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	rows, err := s.productRepo.WithTx(tx).ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uint]*models.Product, len(rows))
	for i := range rows {
		products[rows[i].ID] = &rows[i]
	}
	return products, nil
}

// allocateCards 按订单项顺序占用卡密，任一商品不足时整单回滚到保存点
func (s *OrderFulfillmentService) allocateCards(tx *gorm.DB, order *models.Order, products map[uint]*models.Product) (*FulfillmentResult, error) {
	result := &FulfillmentResult{
		CardCodes:      []string{},
		DeliveryStatus: constants.DeliveryStatusNone,
	}
	hasCardLine := false
	for _, item := range order.Items {
		if product := products[item.ProductID]; product != nil && product.UseCardDelivery {
			hasCardLine = true
			break
		}
	}
	if !hasCardLine {
		return result, nil
	}

	if err := tx.SavePoint(cardAllocationSavePoint).Error; err != nil {
		return nil, err
	}
	cardRepo := s.cardRepo.WithTx(tx)
	now := time.Now()
	var claimedIDs []uint
	for _, item := range order.Items {
		product := products[item.ProductID]
		if product == nil || !product.UseCardDelivery {
			continue
		}
		ids, err := cardRepo.ListClaimableIDs(product.ID, item.Quantity)
		if err != nil {
			return nil, err
		}
		claimed := int64(0)
		if len(ids) == item.Quantity {
			claimed, err = cardRepo.Claim(ids, order.ID, now)
			if err != nil {
				return nil, err
			}
		}
		if claimed != int64(item.Quantity) {
			if err := tx.RollbackTo(cardAllocationSavePoint).Error; err != nil {
				return nil, err
			}
			logger.Warnw("order_card_shortage",
				"order_id", order.ID,
				"product_id", product.ID,
				"required", item.Quantity,
				"available", len(ids),
			)
			result.CardCodes = []string{}
			result.DeliveryStatus = constants.DeliveryStatusManualRequired
			result.ShortageProduct = product.ID
			return result, nil
		}
		claimedIDs = append(claimedIDs, ids...)
	}

	cards, err := cardRepo.ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	for _, card := range cards {
		result.CardCodes = append(result.CardCodes, card.CardCode)
	}
	result.DeliveryStatus = constants.DeliveryStatusDelivered
	logger.Infow("order_cards_allocated", "order_id", order.ID, "card_count", len(claimedIDs))
	return result, nil
}

// creditBalanceCards 消费卡商品按面值为买家入账，参考号保证重复执行不重复入账
func (s *OrderFulfillmentService) creditBalanceCards(tx *gorm.DB, order *models.Order, products map[uint]*models.Product) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range order.Items {
		product := products[item.ProductID]
		if product == nil || !product.IsBalanceCard {
			continue
		}
		amount := product.CardValue.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		orderID := order.ID
		if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
			UserID:      order.UserID,
			Amount:      amount,
			TxnType:     constants.BalanceTxnTypeRecharge,
			Reference:   orderBalanceReference(order.ID, fmt.Sprintf("balance_card:%d", item.ID)),
			Description: fmt.Sprintf("购买消费卡充值 (%d张)", item.Quantity),
			OrderID:     &orderID,
		}); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}
