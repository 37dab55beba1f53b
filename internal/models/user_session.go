package models

import "time"

// UserSession 用户会话
type UserSession struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	SessionToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (UserSession) TableName() string {
	return "user_sessions"
}
