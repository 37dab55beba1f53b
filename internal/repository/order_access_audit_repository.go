package repository

import (
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// OrderAccessAuditRepository 订单访问审计数据访问接口
type OrderAccessAuditRepository interface {
	Create(audit *models.OrderAccessAudit) error
	List(filter OrderAccessAuditListFilter) ([]models.OrderAccessAudit, int64, error)
}

// GormOrderAccessAuditRepository GORM 实现
type GormOrderAccessAuditRepository struct {
	db *gorm.DB
}

// NewOrderAccessAuditRepository 创建审计仓库
func NewOrderAccessAuditRepository(db *gorm.DB) *GormOrderAccessAuditRepository {
	return &GormOrderAccessAuditRepository{db: db}
}

// Create 写入审计记录
func (r *GormOrderAccessAuditRepository) Create(audit *models.OrderAccessAudit) error {
	return r.db.Create(audit).Error
}

// List 分页查询审计记录（按时间倒序）
func (r *GormOrderAccessAuditRepository) List(filter OrderAccessAuditListFilter) ([]models.OrderAccessAudit, int64, error) {
	query := r.db.Model(&models.OrderAccessAudit{})
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlySuspicious {
		query = query.Where("suspicious = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var audits []models.OrderAccessAudit
	if err := query.Order("created_at desc, id desc").Find(&audits).Error; err != nil {
		return nil, 0, err
	}
	return audits, total, nil
}
