package models

import (
	"time"
)

// GiftCode 礼品码（消费卡）
type GiftCode struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                   // 主键
	Code            string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`      // 兑换码
	CardValue       Money      `gorm:"type:decimal(20,2);not null" json:"card_value"`          // 面值
	Status          string     `gorm:"type:varchar(20);index;not null" json:"status"`          // 状态
	CreatorUserID   string     `gorm:"type:varchar(64);index;not null" json:"creator_user_id"` // 创建人
	RecipientUserID *string    `gorm:"type:varchar(64);index" json:"recipient_user_id"`        // 兑换人
	IsGift          bool       `gorm:"not null;default:false" json:"is_gift"`                  // 是否赠送他人
	OrderID         *uint      `gorm:"index" json:"order_id,omitempty"`                        // 来源订单
	ExpiresAt       *time.Time `gorm:"index" json:"expires_at"`                                // 过期时间
	RedeemedAt      *time.Time `json:"redeemed_at"`                                            // 兑换时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (GiftCode) TableName() string {
	return "gift_codes"
}
