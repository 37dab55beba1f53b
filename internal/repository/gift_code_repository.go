package repository

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// GiftCodeRepository 礼品码数据访问接口
type GiftCodeRepository interface {
	Create(code *models.GiftCode) error
	CodeExists(code string) (bool, error)
	GetByCodes(codes []string) (*models.GiftCode, error)
	MarkRedeemed(id uint, recipientUserID *string, redeemedAt time.Time) (int64, error)
	MarkExpired(id uint) (int64, error)
	ListByCreator(userID string) ([]models.GiftCode, error)
	ListByOrder(orderID uint) ([]models.GiftCode, error)
	WithTx(tx *gorm.DB) *GormGiftCodeRepository
}

// GormGiftCodeRepository GORM 实现
type GormGiftCodeRepository struct {
	db *gorm.DB
}

// NewGiftCodeRepository 创建礼品码仓库
func NewGiftCodeRepository(db *gorm.DB) *GormGiftCodeRepository {
	return &GormGiftCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCodeRepository) WithTx(tx *gorm.DB) *GormGiftCodeRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCodeRepository{db: tx}
}

// Create 创建礼品码
func (r *GormGiftCodeRepository) Create(code *models.GiftCode) error {
	return r.db.Create(code).Error
}

// CodeExists 判断兑换码是否已存在
func (r *GormGiftCodeRepository) CodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.GiftCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByCodes 按候选写法依次匹配兑换码，返回第一条命中记录
func (r *GormGiftCodeRepository) GetByCodes(codes []string) (*models.GiftCode, error) {
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		gift, err := firstOrNil[models.GiftCode](r.db.Where("code = ?", code))
		if err != nil || gift != nil {
			return gift, err
		}
	}
	return nil, nil
}

// MarkRedeemed 条件兑换，仅 active 状态可被兑换一次
func (r *GormGiftCodeRepository) MarkRedeemed(id uint, recipientUserID *string, redeemedAt time.Time) (int64, error) {
	result := r.db.Model(&models.GiftCode{}).
		Where("id = ? AND status = ?", id, constants.GiftCodeStatusActive).
		Updates(map[string]interface{}{
			"status":            constants.GiftCodeStatusRedeemed,
			"recipient_user_id": recipientUserID,
			"redeemed_at":       redeemedAt,
		})
	return result.RowsAffected, result.Error
}

// MarkExpired 将已过期的礼品码标记为 expired
func (r *GormGiftCodeRepository) MarkExpired(id uint) (int64, error) {
	result := r.db.Model(&models.GiftCode{}).
		Where("id = ? AND status = ?", id, constants.GiftCodeStatusActive).
		Update("status", constants.GiftCodeStatusExpired)
	return result.RowsAffected, result.Error
}

// ListByCreator 查询用户创建的礼品码
func (r *GormGiftCodeRepository) ListByCreator(userID string) ([]models.GiftCode, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []models.GiftCode{}, nil
	}
	var codes []models.GiftCode
	if err := r.db.Where("creator_user_id = ?", userID).Order("created_at desc, id desc").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// ListByOrder 查询来源订单已生成的礼品码
func (r *GormGiftCodeRepository) ListByOrder(orderID uint) ([]models.GiftCode, error) {
	var codes []models.GiftCode
	if orderID == 0 {
		return codes, nil
	}
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
