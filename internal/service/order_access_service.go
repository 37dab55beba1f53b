package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// 订单访问审计备注
const (
	accessNoteOrderNotFound  = "Order not found"
	accessNoteUserMismatch   = "User does not own this order"
	accessNoteDeviceMismatch = "Different device than order creation"
)

// OrderAccessRequest 订单访问请求
type OrderAccessRequest struct {
	OrderID           uint
	UserID            string
	DeviceFingerprint string
	ClientIP          string
	UserAgent         string
	AccessType        string
}

// OrderAccessVerdict 访问校验结论
type OrderAccessVerdict struct {
	Authorized bool          `json:"authorized"`
	Suspicious bool          `json:"suspicious"`
	Reason     string        `json:"reason,omitempty"`
	Order      *models.Order `json:"-"`
}

// OrderAccessService 订单归属校验与访问审计
type OrderAccessService struct {
	orderRepo repository.OrderRepository
	auditRepo repository.OrderAccessAuditRepository
}

// NewOrderAccessService 创建订单访问服务
func NewOrderAccessService(orderRepo repository.OrderRepository, auditRepo repository.OrderAccessAuditRepository) *OrderAccessService {
	return &OrderAccessService{orderRepo: orderRepo, auditRepo: auditRepo}
}

// Verify 校验访问者是否拥有订单，不写审计
func (s *OrderAccessService) Verify(orderID uint, userID, deviceFingerprint string) (*OrderAccessVerdict, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return &OrderAccessVerdict{Suspicious: true, Reason: accessNoteOrderNotFound}, nil
	}
	if order.UserID != strings.TrimSpace(userID) {
		return &OrderAccessVerdict{Suspicious: true, Reason: accessNoteUserMismatch, Order: order}, nil
	}
	deviceFingerprint = strings.TrimSpace(deviceFingerprint)
	if order.DeviceFingerprint != "" && deviceFingerprint != "" && order.DeviceFingerprint != deviceFingerprint {
		return &OrderAccessVerdict{Authorized: true, Suspicious: true, Reason: accessNoteDeviceMismatch, Order: order}, nil
	}
	return &OrderAccessVerdict{Authorized: true, Order: order}, nil
}

// Check 校验并记录审计，审计写入失败不影响结论
func (s *OrderAccessService) Check(req OrderAccessRequest) (*OrderAccessVerdict, error) {
	verdict, err := s.Verify(req.OrderID, req.UserID, req.DeviceFingerprint)
	if err != nil {
		return nil, err
	}
	audit := &models.OrderAccessAudit{
		OrderID:           req.OrderID,
		UserID:            strings.TrimSpace(req.UserID),
		DeviceFingerprint: strings.TrimSpace(req.DeviceFingerprint),
		AccessIP:          req.ClientIP,
		UserAgent:         truncate(req.UserAgent, 512),
		AccessType:        req.AccessType,
		IsAuthorized:      verdict.Authorized,
		Suspicious:        verdict.Suspicious,
		AuditNotes:        verdict.Reason,
		CreatedAt:         time.Now(),
	}
	if err := s.auditRepo.Create(audit); err != nil {
		logger.Errorw("order_access_audit_write_failed", "order_id", req.OrderID, "error", err)
	}
	if verdict.Suspicious {
		logger.Warnw("order_access_suspicious",
			"order_id", req.OrderID,
			"user_id", req.UserID,
			"access_type", req.AccessType,
			"authorized", verdict.Authorized,
			"reason", verdict.Reason,
		)
	}
	return verdict, nil
}

// ListSuspicious 可疑访问报表
func (s *OrderAccessService) ListSuspicious(filter repository.OrderAccessAuditListFilter) ([]models.OrderAccessAudit, int64, error) {
	filter.OnlySuspicious = true
	filter.Page, filter.PageSize = repository.NormalizePagination(filter.Page, filter.PageSize)
	return s.auditRepo.List(filter)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
