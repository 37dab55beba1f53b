package queue

import (
	"encoding/json"
	"fmt"

	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCardShortage 卡密不足待人工交付任务
	TaskOrderCardShortage = constants.TaskOrderCardShortage
	// TaskOrderPendingExpire 待付款订单超时取消任务
	TaskOrderPendingExpire = constants.TaskOrderPendingExpire
)

// OrderCardShortagePayload 卡密不足任务载荷
type OrderCardShortagePayload struct {
	OrderID     uint   `json:"order_id"`
	PaymentCode string `json:"payment_code"`
}

// OrderPendingExpirePayload 超时取消任务载荷
type OrderPendingExpirePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderCardShortageTask 创建卡密不足任务
func NewOrderCardShortageTask(payload OrderCardShortagePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCardShortage, body), nil
}

// NewOrderPendingExpireTask 创建超时取消任务
func NewOrderPendingExpireTask(payload OrderPendingExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPendingExpire, body), nil
}

// ParseOrderCardShortagePayload 解析卡密不足任务载荷
func ParseOrderCardShortagePayload(body []byte) (OrderCardShortagePayload, error) {
	var payload OrderCardShortagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order_id is required")
	}
	return payload, nil
}

// ParseOrderPendingExpirePayload 解析超时取消任务载荷
func ParseOrderPendingExpirePayload(body []byte) (OrderPendingExpirePayload, error) {
	var payload OrderPendingExpirePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order_id is required")
	}
	return payload, nil
}
