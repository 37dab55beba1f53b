package models

import (
	"time"
)

// ProductCard 卡密库存表
type ProductCard struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                    // 主键
	ProductID uint       `gorm:"index;not null" json:"product_id"`                        // 商品ID
	CardCode  string     `gorm:"type:varchar(512);uniqueIndex;not null" json:"card_code"` // 卡密内容，全局唯一
	Status    string     `gorm:"type:varchar(20);index;not null" json:"status"`           // 状态（available/used）
	OrderID   *uint      `gorm:"index" json:"order_id,omitempty"`                         // 关联订单ID
	UsedAt    *time.Time `gorm:"index" json:"used_at"`                                    // 使用时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (ProductCard) TableName() string {
	return "product_cards"
}
