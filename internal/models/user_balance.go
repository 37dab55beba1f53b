package models

import "time"

// UserBalance 用户余额，user_id 为设备ID或账号ID
type UserBalance struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                   // 主键
	UserID       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`   // 余额身份
	Balance      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`   // 余额
	LinkedUserID *string   `gorm:"type:varchar(64);index" json:"linked_user_id,omitempty"` // 合并到的账号
	CreatedAt    time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (UserBalance) TableName() string {
	return "user_balances"
}
