package repository

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByPaymentCode(code string) (*models.Order, error)
	GetByPaymentCodeForUpdate(code string) (*models.Order, error)
	PaymentCodeExists(code string) (bool, error)
	ListByUser(userID string, limit int) ([]models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (int64, error)
	Update(id uint, updates map[string]interface{}) error
	SumUserProductQuantity(userID string, productID uint, statuses []string) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	return firstOrNil[models.Order](query)
}

// GetByID 根据 ID 获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Preload("Items").Where("id = ?", id))
}

// GetByIDForUpdate 加锁获取订单（含订单项）
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Preload("Items").Where("id = ?", id))
}

// GetByPaymentCode 根据付款码获取订单
func (r *GormOrderRepository) GetByPaymentCode(code string) (*models.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.first(r.db.Preload("Items").Where("payment_code = ?", code))
}

// GetByPaymentCodeForUpdate 根据付款码加锁获取订单
func (r *GormOrderRepository) GetByPaymentCodeForUpdate(code string) (*models.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Preload("Items").Where("payment_code = ?", code))
}

// PaymentCodeExists 判断付款码是否已被占用
func (r *GormOrderRepository) PaymentCodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("payment_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser 查询用户订单（含订单项，按创建时间倒序）
func (r *GormOrderRepository) ListByUser(userID string, limit int) ([]models.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []models.Order{}, nil
	}
	query := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdmin 管理端分页查询订单
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DeliveryStatus != "" {
		query = query.Where("delivery_status = ?", filter.DeliveryStatus)
	}
	if filter.PaymentCode != "" {
		query = query.Where("payment_code = ?", strings.ToUpper(filter.PaymentCode))
	}
	if filter.Email != "" {
		query = query.Where("email "+likeOperatorByDialect(dbDialectName(r.db))+" ?", "%"+filter.Email+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus 条件更新订单状态，仅当当前状态为 from 时生效
func (r *GormOrderRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	values := map[string]interface{}{"status": to}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Update 更新订单字段
func (r *GormOrderRepository) Update(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// SumUserProductQuantity 统计用户在指定状态订单中购买某商品的数量
func (r *GormOrderRepository) SumUserProductQuantity(userID string, productID uint, statuses []string) (int64, error) {
	if strings.TrimSpace(userID) == "" || productID == 0 {
		return 0, nil
	}
	var total int64
	query := r.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID)
	if len(statuses) > 0 {
		query = query.Where("orders.status IN ?", statuses)
	}
	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
