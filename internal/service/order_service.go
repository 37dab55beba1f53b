package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderInsertSavePoint = "order_insert"

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	couponRepo     repository.CouponRepository
	checker        *InventoryChecker
	pricing        *PricingService
	balanceSvc     *BalanceService
	fulfillmentSvc *OrderFulfillmentService
	accessSvc      *OrderAccessService
	queueClient    *queue.Client
	expireMinutes  int
}

// OrderServiceOptions 订单服务依赖
type OrderServiceOptions struct {
	OrderRepo      repository.OrderRepository
	ProductRepo    repository.ProductRepository
	CouponRepo     repository.CouponRepository
	Checker        *InventoryChecker
	Pricing        *PricingService
	BalanceSvc     *BalanceService
	FulfillmentSvc *OrderFulfillmentService
	AccessSvc      *OrderAccessService
	QueueClient    *queue.Client
	ExpireMinutes  int
}

// NewOrderService 创建订单服务
func NewOrderService(opts OrderServiceOptions) *OrderService {
	return &OrderService{
		orderRepo:      opts.OrderRepo,
		productRepo:    opts.ProductRepo,
		couponRepo:     opts.CouponRepo,
		checker:        opts.Checker,
		pricing:        opts.Pricing,
		balanceSvc:     opts.BalanceSvc,
		fulfillmentSvc: opts.FulfillmentSvc,
		accessSvc:      opts.AccessSvc,
		queueClient:    opts.QueueClient,
		expireMinutes:  opts.ExpireMinutes,
	}
}

// CreateOrderItem 下单商品行
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
	Price     *models.Money // 客户端展示价，仅用于比对
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	UserID            string
	Items             []CreateOrderItem
	Email             string
	Country           string
	AddressLine1      string
	AddressLine2      string
	Notes             string
	CouponCode        string
	ClientDiscount    *models.Money
	ClientFinalPrice  *models.Money
	UseBalance        bool
	BalanceAmount     models.Money
	ClientIP          string
	DeviceFingerprint string
}

// CreateOrderResult 下单结果
type CreateOrderResult struct {
	OrderID        uint         `json:"orderId"`
	PaymentCode    string       `json:"paymentCode"`
	Status         string       `json:"status"`
	IsFree         bool         `json:"isFree"`
	BalanceUsed    models.Money `json:"balanceUsed"`
	RemainingPrice models.Money `json:"remainingPrice"`
}

// ConfirmPaymentResult 确认付款结果
type ConfirmPaymentResult struct {
	Success   bool     `json:"success"`
	OrderID   uint     `json:"orderId"`
	CardCodes []string `json:"cardCodes"`
}

// CreateOrder 在单个事务内完成校验、计价、扣库存、余额抵扣与零元单交付
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreateOrderInput(&input); err != nil {
		return nil, err
	}
	lines := mergeOrderLines(input.Items)
	now := time.Now()

	order := &models.Order{
		Status:            constants.OrderStatusPending,
		UserID:            input.UserID,
		Email:             input.Email,
		Country:           input.Country,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		Notes:             input.Notes,
		PaymentMethod:     constants.PaymentMethodPaymentCode,
		DeliveryStatus:    constants.DeliveryStatusNone,
		ClientIP:          input.ClientIP,
		DeviceFingerprint: input.DeviceFingerprint,
		BalancePaid:       models.ZeroMoney(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	var (
		reservation *Reservation
		fulfillment *FulfillmentResult
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		pricingLines, err := s.checkOrderLines(tx, input.UserID, lines, now)
		if err != nil {
			return err
		}
		totals, err := s.pricing.ComputeTotals(tx, pricingLines, input.CouponCode, now)
		if err != nil {
			return err
		}
		logClientTotalsMismatch(input, totals)

		if totals.Coupon != nil {
			affected, err := s.couponRepo.WithTx(tx).IncrementUsedCount(totals.Coupon.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrCouponInvalid
			}
			order.CouponCode = totals.Coupon.Code
		}
		order.TotalPrice = models.NewMoneyFromDecimal(totals.Subtotal)
		order.DiscountAmount = models.NewMoneyFromDecimal(totals.Discount)
		order.FinalPrice = models.NewMoneyFromDecimal(totals.Final)

		items := make([]models.OrderItem, 0, len(totals.Lines))
		for _, line := range totals.Lines {
			items = append(items, models.OrderItem{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       models.NewMoneyFromDecimal(line.UnitPrice),
				CreatedAt:   now,
			})
		}
		if err := s.insertOrderWithPaymentCode(tx, order, items); err != nil {
			return err
		}

		productRepo := s.productRepo.WithTx(tx)
		for _, line := range totals.Lines {
			affected, err := productRepo.IncrementSoldCount(line.Product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return newCheckError(ErrOutOfStock, "商品%s库存不足", line.Product.Name)
			}
		}

		reservation = &Reservation{
			Used:      decimal.Zero,
			Remaining: totals.Final,
			Method:    constants.PaymentMethodPaymentCode,
		}
		if input.UseBalance && input.BalanceAmount.Decimal.GreaterThan(decimal.Zero) {
			reservation, err = s.balanceSvc.Reserve(tx, input.UserID, input.BalanceAmount.Decimal, totals.Final, order.ID)
			if err != nil {
				return err
			}
		}
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Update(order.ID, map[string]interface{}{
			"payment_method": reservation.Method,
			"balance_paid":   models.NewMoneyFromDecimal(reservation.Used),
			"updated_at":     now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}
		order.PaymentMethod = reservation.Method
		order.BalancePaid = models.NewMoneyFromDecimal(reservation.Used)

		if reservation.Remaining.GreaterThan(decimal.Zero) {
			return nil
		}
		affected, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, map[string]interface{}{
			"paid_at":    now,
			"updated_at": now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}
		order.Status = constants.OrderStatusPaid
		order.PaidAt = &now
		fulfillment, err = s.fulfillmentSvc.OnEnterPaid(tx, order)
		return err
	})
	if err != nil {
		return nil, normalizeOrderCreateError(err)
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"payment_code", order.PaymentCode,
		"user_id", order.UserID,
		"status", order.Status,
		"final_price", order.FinalPrice.String(),
		"balance_used", reservation.Used.StringFixed(2),
	)
	s.afterOrderCommitted(ctx, order, fulfillment)

	return &CreateOrderResult{
		OrderID:        order.ID,
		PaymentCode:    order.PaymentCode,
		Status:         order.Status,
		IsFree:         order.FinalPrice.Decimal.IsZero(),
		BalanceUsed:    models.NewMoneyFromDecimal(reservation.Used),
		RemainingPrice: models.NewMoneyFromDecimal(reservation.Remaining),
	}, nil
}

// ConfirmPayment 商家按付款码确认收款，重复确认返回 ErrOrderAlreadyPaid
func (s *OrderService) ConfirmPayment(ctx context.Context, paymentCode string) (*ConfirmPaymentResult, error) {
	code := NormalizePaymentCode(paymentCode)
	if code == "" {
		return nil, ErrOrderNotFound
	}
	var (
		order       *models.Order
		fulfillment *FulfillmentResult
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		var err error
		order, err = orderRepo.GetByPaymentCodeForUpdate(code)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		switch order.Status {
		case constants.OrderStatusPaid:
			return ErrOrderAlreadyPaid
		case constants.OrderStatusCancelled:
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		affected, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, map[string]interface{}{
			"paid_at":    now,
			"updated_at": now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderAlreadyPaid
		}
		order.Status = constants.OrderStatusPaid
		order.PaidAt = &now
		fulfillment, err = s.fulfillmentSvc.OnEnterPaid(tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_payment_confirmed",
		"order_id", order.ID,
		"payment_code", order.PaymentCode,
		"delivery_status", fulfillment.DeliveryStatus,
	)
	s.afterOrderCommitted(ctx, order, fulfillment)

	result := &ConfirmPaymentResult{Success: true, OrderID: order.ID}
	if len(fulfillment.CardCodes) > 0 {
		result.CardCodes = fulfillment.CardCodes
	}
	return result, nil
}

// CancelOrder 管理员取消待付款订单
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.cancelPendingOrder(orderID, "order_cancelled_by_admin")
}

// ExpirePendingOrder 超时未付款的订单自动取消，订单已离开 pending 时静默返回
func (s *OrderService) ExpirePendingOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if s.expireMinutes > 0 && time.Since(order.CreatedAt) < time.Duration(s.expireMinutes)*time.Minute {
		return nil
	}
	if _, err := s.cancelPendingOrder(orderID, "order_expired"); err != nil {
		if errors.Is(err, ErrOrderStatusInvalid) {
			return nil
		}
		return err
	}
	return nil
}

// RetryFulfillment 补货后重新为 manual_required 订单分配卡密
func (s *OrderService) RetryFulfillment(ctx context.Context, orderID uint) (*models.Order, *FulfillmentResult, error) {
	var (
		order       *models.Order
		fulfillment *FulfillmentResult
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderMissing
		}
		if order.Status != constants.OrderStatusPaid {
			return ErrOrderStatusInvalid
		}
		if order.DeliveryStatus != constants.DeliveryStatusManualRequired {
			return ErrFulfillmentNotNeeded
		}
		fulfillment, err = s.fulfillmentSvc.OnEnterPaid(tx, order)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Infow("order_fulfillment_retried",
		"order_id", order.ID,
		"delivery_status", fulfillment.DeliveryStatus,
	)
	return order, fulfillment, nil
}

func (s *OrderService) cancelPendingOrder(orderID uint, event string) (*models.Order, error) {
	var order *models.Order
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		var err error
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderMissing
		}
		if order.Status != constants.OrderStatusPending {
			return ErrOrderStatusInvalid
		}
		affected, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}

		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := productRepo.ReleaseSoldCount(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if order.CouponCode != "" {
			couponRepo := s.couponRepo.WithTx(tx)
			coupon, err := couponRepo.GetByCode(order.CouponCode)
			if err != nil {
				return err
			}
			if coupon != nil {
				if err := couponRepo.DecrementUsedCount(coupon.ID); err != nil {
					return err
				}
			}
		}
		refund := order.BalancePaid.Decimal.Round(2)
		if refund.GreaterThan(decimal.Zero) {
			id := order.ID
			if _, _, err := s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
				UserID:      order.UserID,
				Amount:      refund,
				TxnType:     constants.BalanceTxnTypeRefund,
				Reference:   orderBalanceReference(order.ID, "balance_refund"),
				Description: "订单取消退款",
				OrderID:     &id,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	logger.Infow(event,
		"order_id", order.ID,
		"payment_code", order.PaymentCode,
		"balance_refunded", order.BalancePaid.String(),
	)
	return order, nil
}

// checkOrderLines 事务内加载商品并逐行校验，首个失败即拒绝整单
func (s *OrderService) checkOrderLines(tx *gorm.DB, userID string, items []CreateOrderItem, now time.Time) ([]PricingLine, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.WithTx(tx).ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	lines := make([]PricingLine, 0, len(items))
	for _, item := range items {
		product := byID[item.ProductID]
		if err := s.checker.Check(tx, product, userID, item.Quantity, now); err != nil {
			return nil, err
		}
		lines = append(lines, PricingLine{
			Product:     product,
			Quantity:    item.Quantity,
			ClientPrice: item.Price,
		})
	}
	return lines, nil
}

// insertOrderWithPaymentCode 生成付款码并写入订单，唯一索引冲突时回滚到保存点重试
func (s *OrderService) insertOrderWithPaymentCode(tx *gorm.DB, order *models.Order, items []models.OrderItem) error {
	orderRepo := s.orderRepo.WithTx(tx)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GeneratePaymentCode()
		if err != nil {
			return err
		}
		exists, err := orderRepo.PaymentCodeExists(code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := tx.SavePoint(orderInsertSavePoint).Error; err != nil {
			return err
		}
		order.PaymentCode = code
		err = orderRepo.Create(order, items)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if rbErr := tx.RollbackTo(orderInsertSavePoint).Error; rbErr != nil {
			return rbErr
		}
		order.ID = 0
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = 0
		}
		logger.Warnw("order_payment_code_conflict", "attempt", attempt+1)
	}
	return ErrPaymentCodeExhausted
}

// afterOrderCommitted 提交后推送异步任务，失败只记录日志
func (s *OrderService) afterOrderCommitted(_ context.Context, order *models.Order, fulfillment *FulfillmentResult) {
	if s.queueClient == nil || order == nil {
		return
	}
	if order.Status == constants.OrderStatusPending && s.expireMinutes > 0 {
		if err := s.queueClient.EnqueueOrderPendingExpire(queue.OrderPendingExpirePayload{
			OrderID: order.ID,
		}, time.Duration(s.expireMinutes)*time.Minute); err != nil {
			logger.Errorw("order_enqueue_pending_expire_failed", "order_id", order.ID, "error", err)
		}
	}
	if fulfillment.NeedsManualDelivery() {
		if err := s.queueClient.EnqueueOrderCardShortage(queue.OrderCardShortagePayload{
			OrderID:     order.ID,
			PaymentCode: order.PaymentCode,
		}); err != nil {
			logger.Errorw("order_enqueue_card_shortage_failed", "order_id", order.ID, "error", err)
		}
	}
}

func validateCreateOrderInput(input *CreateOrderInput) error {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Email = strings.TrimSpace(input.Email)
	input.Country = strings.TrimSpace(input.Country)
	input.AddressLine1 = strings.TrimSpace(input.AddressLine1)
	input.AddressLine2 = strings.TrimSpace(input.AddressLine2)
	input.Notes = strings.TrimSpace(input.Notes)
	input.CouponCode = strings.TrimSpace(input.CouponCode)
	if len(input.Items) == 0 {
		return ErrInvalidOrderItem
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return ErrInvalidOrderItem
		}
	}
	if input.UserID == "" || input.Country == "" || input.AddressLine1 == "" {
		return ErrOrderInputInvalid
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// mergeOrderLines 同一商品的多行合并为一行，保持首次出现的顺序
func mergeOrderLines(items []CreateOrderItem) []CreateOrderItem {
	merged := make([]CreateOrderItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func logClientTotalsMismatch(input CreateOrderInput, totals *Totals) {
	if input.ClientFinalPrice != nil && !input.ClientFinalPrice.Decimal.Round(2).Equal(totals.Final) {
		logger.Warnw("order_client_price_mismatch",
			"user_id", input.UserID,
			"client_final_price", input.ClientFinalPrice.String(),
			"final_price", totals.Final.StringFixed(2),
		)
	}
	if input.ClientDiscount != nil && !input.ClientDiscount.Decimal.Round(2).Equal(totals.Discount) {
		logger.Warnw("order_client_price_mismatch",
			"user_id", input.UserID,
			"client_discount", input.ClientDiscount.String(),
			"discount", totals.Discount.StringFixed(2),
		)
	}
}

// normalizeOrderCreateError 业务错误原样返回，其余统一为 ErrOrderCreateFailed
func normalizeOrderCreateError(err error) error {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return err
	}
	for _, known := range []error{
		ErrInvalidOrderItem,
		ErrProductNotFound,
		ErrCouponInvalid,
		ErrBalanceInsufficient,
		ErrBalanceUserRequired,
		ErrPaymentCodeExhausted,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	logger.Errorw("order_create_failed", "error", err)
	return ErrOrderCreateFailed
}
