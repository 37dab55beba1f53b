package models

import "time"

// BalanceTransaction 余额流水（只追加）
type BalanceTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                    // 主键
	UserID        string    `gorm:"type:varchar(64);index;not null" json:"user_id"`          // 余额身份
	Type          string    `gorm:"type:varchar(20);index;not null" json:"type"`             // 类型（recharge/consume/refund）
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`              // 方向（in/out）
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`               // 金额（正数）
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`       // 变动前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`        // 变动后余额
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`                         // 关联订单
	Reference     string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"` // 幂等键
	Description   string    `gorm:"type:varchar(255)" json:"description"`                    // 描述
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
