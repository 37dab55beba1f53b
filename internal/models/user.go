package models

import (
	"time"
)

// User 用户表
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                // 主键
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string    `gorm:"not null" json:"-"`                                   // 密码哈希（不返回给前端）
	Nickname     string    `gorm:"type:varchar(64);default:''" json:"nickname"`         // 昵称
	DeviceID     string    `gorm:"type:varchar(64);index" json:"device_id,omitempty"`   // 注册时的设备ID
	Status       string    `gorm:"type:varchar(20);default:'active'" json:"status"`     // 账号状态
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
