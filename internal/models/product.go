package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product 商品表
type Product struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`                  // 商品名称
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`      // 售价
	ImageURL         string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`            // 图片地址
	Description      string         `gorm:"type:text" json:"description,omitempty"`                  // 商品描述
	Tags             datatypes.JSON `gorm:"type:json" json:"tags,omitempty"`                         // 标签（JSON 数组）
	UseCardDelivery  bool           `gorm:"not null;default:false" json:"use_card_delivery"`         // 是否卡密发货
	MaxPerUser       *int           `json:"max_per_user"`                                            // 每人限购（空表示不限）
	TotalStock       *int           `json:"total_stock"`                                             // 库存上限（空表示不限）
	SoldCount        int            `gorm:"not null;default:0" json:"sold_count"`                    // 已售数量
	SaleEndTime      *time.Time     `json:"sale_end_time"`                                           // 停售时间
	IsPresale        bool           `gorm:"not null;default:false" json:"is_presale"`                // 是否预售
	PresaleStartTime *time.Time     `json:"presale_start_time"`                                      // 预售开售时间
	IsBalanceCard    bool           `gorm:"not null;default:false" json:"is_balance_card"`           // 是否消费卡（购买即充值）
	CardValue        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"card_value"` // 消费卡面值
	IsActive         bool           `gorm:"not null;default:true;index" json:"is_active"`            // 是否上架
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
