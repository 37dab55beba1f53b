package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order 订单表
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                            // 主键
	PaymentCode       string         `gorm:"type:varchar(16);uniqueIndex;not null" json:"payment_code"`       // 付款码
	Status            string         `gorm:"type:varchar(20);index;not null" json:"status"`                   // 订单状态
	UserID            string         `gorm:"type:varchar(64);index;not null" json:"user_id"`                  // 下单身份（设备ID或用户ID）
	Email             string         `gorm:"type:varchar(255);not null" json:"email"`                         // 联系邮箱
	Country           string         `gorm:"type:varchar(64);not null" json:"country"`                        // 国家
	AddressLine1      string         `gorm:"type:varchar(255);not null" json:"address_line1"`                 // 地址行1
	AddressLine2      string         `gorm:"type:varchar(255)" json:"address_line2,omitempty"`                // 地址行2
	Notes             string         `gorm:"type:text" json:"notes,omitempty"`                                // 备注
	CouponCode        string         `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`                   // 优惠码
	TotalPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`        // 商品总价
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`    // 优惠金额
	FinalPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"final_price"`        // 应付金额
	BalancePaid       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance_paid"`       // 余额抵扣
	PaymentMethod     string         `gorm:"type:varchar(20);not null" json:"payment_method"`                 // 支付方式
	CardCodes         string         `gorm:"type:text" json:"card_codes,omitempty"`                           // 已发卡密（逗号拼接缓存）
	DeliveryStatus    string         `gorm:"type:varchar(20);not null;default:'none'" json:"delivery_status"` // 交付状态
	DeviceFingerprint string         `gorm:"type:varchar(128)" json:"-"`                                      // 下单设备指纹
	ClientIP          string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                     // 下单客户端IP
	PaymentInfo       datatypes.JSON `gorm:"type:json" json:"payment_info,omitempty"`                         // 买家补充的付款信息
	PaidAt            *time.Time     `gorm:"index" json:"paid_at"`                                            // 支付时间
	CancelledAt       *time.Time     `gorm:"index" json:"cancelled_at"`                                       // 取消时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间

	Items []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Cards []ProductCard `gorm:"foreignKey:OrderID" json:"-"`               // 已分配卡密
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
