package repository

import (
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductCardRepository 卡密数据访问接口
type ProductCardRepository interface {
	CreateBatch(cards []models.ProductCard) (int64, error)
	ListExistingCodes(codes []string) (map[string]struct{}, error)
	List(filter CardListFilter) ([]models.ProductCard, int64, error)
	GetByID(id uint) (*models.ProductCard, error)
	ListByOrder(orderID uint) ([]models.ProductCard, error)
	ListClaimableIDs(productID uint, limit int) ([]uint, error)
	Claim(ids []uint, orderID uint, usedAt time.Time) (int64, error)
	CountAvailable(productID uint) (int64, error)
	CountStats() ([]CardStockStat, error)
	DeleteAvailable(ids []uint) (int64, error)
	WithTx(tx *gorm.DB) *GormProductCardRepository
}

// GormProductCardRepository GORM 实现
type GormProductCardRepository struct {
	db *gorm.DB
}

// NewProductCardRepository 创建卡密仓库
func NewProductCardRepository(db *gorm.DB) *GormProductCardRepository {
	return &GormProductCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductCardRepository) WithTx(tx *gorm.DB) *GormProductCardRepository {
	if tx == nil {
		return r
	}
	return &GormProductCardRepository{db: tx}
}

// CreateBatch 批量导入卡密，已存在的卡密跳过
func (r *GormProductCardRepository) CreateBatch(cards []models.ProductCard) (int64, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&cards, 200)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListExistingCodes 查询已存在的卡密，不区分商品
func (r *GormProductCardRepository) ListExistingCodes(codes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(codes) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.Model(&models.ProductCard{}).
		Where("card_code IN ?", codes).
		Pluck("card_code", &found).Error; err != nil {
		return nil, err
	}
	for _, code := range found {
		existing[code] = struct{}{}
	}
	return existing, nil
}

// List 分页查询卡密
func (r *GormProductCardRepository) List(filter CardListFilter) ([]models.ProductCard, int64, error) {
	query := r.db.Model(&models.ProductCard{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var cards []models.ProductCard
	if err := query.Order("id asc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// GetByID 根据 ID 获取卡密
func (r *GormProductCardRepository) GetByID(id uint) (*models.ProductCard, error) {
	return findByID[models.ProductCard](r.db, id)
}

// ListByOrder 查询订单已分配的卡密
func (r *GormProductCardRepository) ListByOrder(orderID uint) ([]models.ProductCard, error) {
	if orderID == 0 {
		return []models.ProductCard{}, nil
	}
	var cards []models.ProductCard
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListClaimableIDs 按 ID 顺序选取可分配的卡密，postgres 下跳过被其他事务锁定的行
func (r *GormProductCardRepository) ListClaimableIDs(productID uint, limit int) ([]uint, error) {
	if productID == 0 || limit <= 0 {
		return []uint{}, nil
	}
	query := r.db.Model(&models.ProductCard{}).
		Where("product_id = ? AND status = ?", productID, constants.CardStatusAvailable).
		Order("id asc").
		Limit(limit)
	if locking, ok := claimLockingByDialect(dbDialectName(r.db)); ok {
		query = query.Clauses(locking)
	}
	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Claim 条件占用卡密，只有仍为 available 的行会被更新
func (r *GormProductCardRepository) Claim(ids []uint, orderID uint, usedAt time.Time) (int64, error) {
	if len(ids) == 0 || orderID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.ProductCard{}).
		Where("id IN ? AND status = ?", ids, constants.CardStatusAvailable).
		Updates(map[string]interface{}{
			"status":     constants.CardStatusUsed,
			"order_id":   orderID,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	return result.RowsAffected, result.Error
}

// CountAvailable 统计商品可用卡密数量
func (r *GormProductCardRepository) CountAvailable(productID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ProductCard{}).
		Where("product_id = ? AND status = ?", productID, constants.CardStatusAvailable).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountStats 按商品聚合卡密库存
func (r *GormProductCardRepository) CountStats() ([]CardStockStat, error) {
	var stats []CardStockStat
	err := r.db.Model(&models.ProductCard{}).
		Select(
			"product_id, COUNT(*) AS total, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS available, "+
				"COUNT(CASE WHEN status = ? THEN 1 END) AS used",
			constants.CardStatusAvailable, constants.CardStatusUsed,
		).
		Group("product_id").
		Order("product_id asc").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteAvailable 删除仍为 available 的卡密，已售卡密不受影响
func (r *GormProductCardRepository) DeleteAvailable(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ? AND status = ?", ids, constants.CardStatusAvailable).Delete(&models.ProductCard{})
	return result.RowsAffected, result.Error
}
