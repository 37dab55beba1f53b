package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/datatypes"
)

const userOrderListLimit = 100

// GetStatus 查询订单状态
func (s *OrderService) GetStatus(orderID uint) (string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrOrderMissing
	}
	return order.Status, nil
}

// GetOrder 访问者查看订单详情，非本人访问返回 ErrOrderForbidden
func (s *OrderService) GetOrder(req OrderAccessRequest) (*models.Order, error) {
	req.AccessType = constants.OrderAccessView
	return s.authorizedOrder(req)
}

// ListUserOrders 查询某身份的订单（含订单项）
func (s *OrderService) ListUserOrders(userID string) ([]models.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrOrderInputInvalid
	}
	return s.orderRepo.ListByUser(userID, userOrderListLimit)
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Page, filter.PageSize = repository.NormalizePagination(filter.Page, filter.PageSize)
	filter.PaymentCode = NormalizePaymentCode(filter.PaymentCode)
	return s.orderRepo.ListAdmin(filter)
}

// VerifyAccess 校验并审计订单访问
func (s *OrderService) VerifyAccess(req OrderAccessRequest) (*OrderAccessVerdict, error) {
	if req.AccessType == "" {
		req.AccessType = constants.OrderAccessView
	}
	return s.accessSvc.Check(req)
}

// SavePaymentInfo 买家为订单补充付款信息
func (s *OrderService) SavePaymentInfo(req OrderAccessRequest, info map[string]interface{}) error {
	if len(info) == 0 {
		return ErrOrderInputInvalid
	}
	req.AccessType = constants.OrderAccessPayment
	order, err := s.authorizedOrder(req)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return ErrOrderInputInvalid
	}
	if err := s.orderRepo.Update(order.ID, map[string]interface{}{
		"payment_info": datatypes.JSON(raw),
		"updated_at":   time.Now(),
	}); err != nil {
		return ErrOrderUpdateFailed
	}
	return nil
}

// GetPaymentInfo 读取订单付款信息，未填写时返回空对象
func (s *OrderService) GetPaymentInfo(req OrderAccessRequest) (map[string]interface{}, error) {
	req.AccessType = constants.OrderAccessPayment
	order, err := s.authorizedOrder(req)
	if err != nil {
		return nil, err
	}
	info := map[string]interface{}{}
	if len(order.PaymentInfo) == 0 {
		return info, nil
	}
	if err := json.Unmarshal(order.PaymentInfo, &info); err != nil {
		return map[string]interface{}{}, nil
	}
	return info, nil
}

func (s *OrderService) authorizedOrder(req OrderAccessRequest) (*models.Order, error) {
	if req.OrderID == 0 || strings.TrimSpace(req.UserID) == "" {
		return nil, ErrOrderInputInvalid
	}
	verdict, err := s.accessSvc.Check(req)
	if err != nil {
		return nil, err
	}
	if verdict.Order == nil {
		return nil, ErrOrderMissing
	}
	if !verdict.Authorized {
		return nil, ErrOrderForbidden
	}
	return verdict.Order, nil
}
