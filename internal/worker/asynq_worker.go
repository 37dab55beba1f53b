package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/hibiken/asynq"
)

// OrderWorkflow 消费者依赖的订单能力
type OrderWorkflow interface {
	RetryFulfillment(ctx context.Context, orderID uint) (*models.Order, *service.FulfillmentResult, error)
	ExpirePendingOrder(ctx context.Context, orderID uint) error
}

// Consumer 异步任务消费者
type Consumer struct {
	Orders OrderWorkflow
}

// NewConsumer 创建消费者
func NewConsumer(orders OrderWorkflow) *Consumer {
	return &Consumer{Orders: orders}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCardShortage, c.handleOrderCardShortage)
	mux.HandleFunc(queue.TaskOrderPendingExpire, c.handleOrderPendingExpire)
}

// handleOrderCardShortage 重新尝试分配卡密，仍不足时返回错误交给 asynq 退避重试
func (c *Consumer) handleOrderCardShortage(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseOrderCardShortagePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_card_shortage_payload_invalid", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	_, result, err := c.Orders.RetryFulfillment(ctx, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFulfillmentNotNeeded),
			errors.Is(err, service.ErrOrderStatusInvalid),
			errors.Is(err, service.ErrOrderMissing):
			logger.Debugw("worker_card_shortage_skip", "order_id", payload.OrderID, "reason", err.Error())
			return nil
		default:
			logger.Warnw("worker_card_shortage_retry_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if result.DeliveryStatus == constants.DeliveryStatusManualRequired {
		logger.Warnw("worker_card_shortage_still_short",
			"order_id", payload.OrderID,
			"payment_code", payload.PaymentCode,
			"product_id", result.ShortageProduct,
		)
		return fmt.Errorf("order %d still short of cards", payload.OrderID)
	}
	logger.Infow("worker_card_shortage_resolved", "order_id", payload.OrderID, "card_count", len(result.CardCodes))
	return nil
}

func (c *Consumer) handleOrderPendingExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseOrderPendingExpirePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_pending_expire_payload_invalid", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := c.Orders.ExpirePendingOrder(ctx, payload.OrderID); err != nil {
		logger.Warnw("worker_pending_expire_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
