package models

import (
	"time"
)

// Coupon 优惠码
type Coupon struct {
	ID            uint       `gorm:"primarykey" json:"id"`                              // 主键
	Code          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"` // 优惠码
	DiscountType  string     `gorm:"type:varchar(20);not null" json:"discount_type"`    // 类型（percentage/fixed）
	DiscountValue Money      `gorm:"type:decimal(20,2);not null" json:"discount_value"` // 数值（百分比或固定金额）
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`            // 是否启用
	MaxUses       *int       `json:"max_uses"`                                          // 总使用上限（空表示不限）
	UsedCount     int        `gorm:"not null;default:0" json:"used_count"`              // 已使用次数
	ValidFrom     *time.Time `gorm:"index" json:"valid_from"`                           // 生效时间
	ValidUntil    *time.Time `gorm:"index" json:"valid_until"`                          // 失效时间
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
