package repository

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSessionRepository 用户会话数据访问接口
type UserSessionRepository interface {
	Create(session *models.UserSession) error
	GetValidByToken(token string, now time.Time) (*models.UserSession, error)
	DeleteByToken(token string) error
	DeleteExpired(now time.Time) (int64, error)
}

// GormUserSessionRepository GORM 实现
type GormUserSessionRepository struct {
	db *gorm.DB
}

// NewUserSessionRepository 创建会话仓库
func NewUserSessionRepository(db *gorm.DB) *GormUserSessionRepository {
	return &GormUserSessionRepository{db: db}
}

// Create 创建会话
func (r *GormUserSessionRepository) Create(session *models.UserSession) error {
	return r.db.Omit(clause.Associations).Create(session).Error
}

// GetValidByToken 获取未过期的会话及其用户
func (r *GormUserSessionRepository) GetValidByToken(token string, now time.Time) (*models.UserSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	return firstOrNil[models.UserSession](r.db.Preload("User").
		Where("session_token = ? AND expires_at > ?", token, now))
}

// DeleteByToken 删除会话（登出）
func (r *GormUserSessionRepository) DeleteByToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return r.db.Where("session_token = ?", token).Delete(&models.UserSession{}).Error
}

// DeleteExpired 清理过期会话
func (r *GormUserSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.UserSession{})
	return result.RowsAffected, result.Error
}
