package repository

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceRepository 余额数据访问接口
type BalanceRepository interface {
	GetByUserID(userID string) (*models.UserBalance, error)
	GetByUserIDForUpdate(userID string) (*models.UserBalance, error)
	CreateIfAbsent(balance *models.UserBalance) error
	UpdateBalance(id uint, balance models.Money) error
	SetLinkedUser(id uint, linkedUserID string) error
	CreateTransaction(txn *models.BalanceTransaction) error
	GetTransactionByReference(reference string) (*models.BalanceTransaction, error)
	ListTransactions(userID string, limit int) ([]models.BalanceTransaction, error)
	WithTx(tx *gorm.DB) *GormBalanceRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormBalanceRepository GORM 实现
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository 创建余额仓库
func NewBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBalanceRepository) WithTx(tx *gorm.DB) *GormBalanceRepository {
	if tx == nil {
		return r
	}
	return &GormBalanceRepository{db: tx}
}

// Transaction 执行事务
func (r *GormBalanceRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormBalanceRepository) first(query *gorm.DB) (*models.UserBalance, error) {
	return firstOrNil[models.UserBalance](query)
}

// GetByUserID 按身份获取余额
func (r *GormBalanceRepository) GetByUserID(userID string) (*models.UserBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	return r.first(r.db.Where("user_id = ?", userID))
}

// GetByUserIDForUpdate 按身份加锁获取余额
func (r *GormBalanceRepository) GetByUserIDForUpdate(userID string) (*models.UserBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Where("user_id = ?", userID))
}

// CreateIfAbsent 创建余额行，已存在时忽略
func (r *GormBalanceRepository) CreateIfAbsent(balance *models.UserBalance) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(balance).Error
}

// UpdateBalance 写入新余额
func (r *GormBalanceRepository) UpdateBalance(id uint, balance models.Money) error {
	return r.db.Model(&models.UserBalance{}).Where("id = ?", id).Update("balance", balance).Error
}

// SetLinkedUser 记录设备余额合并到的账号
func (r *GormBalanceRepository) SetLinkedUser(id uint, linkedUserID string) error {
	return r.db.Model(&models.UserBalance{}).Where("id = ?", id).Update("linked_user_id", linkedUserID).Error
}

// CreateTransaction 追加余额流水
func (r *GormBalanceRepository) CreateTransaction(txn *models.BalanceTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按幂等键获取流水
func (r *GormBalanceRepository) GetTransactionByReference(reference string) (*models.BalanceTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	return firstOrNil[models.BalanceTransaction](r.db.Where("reference = ?", reference))
}

// ListTransactions 查询最近的余额流水
func (r *GormBalanceRepository) ListTransactions(userID string, limit int) ([]models.BalanceTransaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []models.BalanceTransaction{}, nil
	}
	query := r.db.Where("user_id = ?", userID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var txns []models.BalanceTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
