package models

import "time"

// OrderAccessAudit 订单访问审计
type OrderAccessAudit struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                  // 主键
	OrderID           uint      `gorm:"index;not null" json:"order_id"`                        // 订单ID
	UserID            string    `gorm:"type:varchar(64);index" json:"user_id"`                 // 访问者身份
	DeviceFingerprint string    `gorm:"type:varchar(128)" json:"device_fingerprint,omitempty"` // 设备指纹
	AccessIP          string    `gorm:"type:varchar(64)" json:"access_ip"`                     // 访问IP
	UserAgent         string    `gorm:"type:varchar(512)" json:"user_agent"`                   // UA
	AccessType        string    `gorm:"type:varchar(20);not null" json:"access_type"`          // 访问类型（view/payment/update）
	IsAuthorized      bool      `gorm:"not null;default:false" json:"is_authorized"`           // 是否授权
	Suspicious        bool      `gorm:"not null;default:false;index" json:"suspicious"`        // 是否可疑
	AuditNotes        string    `gorm:"type:varchar(255)" json:"audit_notes,omitempty"`        // 审计备注
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                               // 创建时间
}

// TableName 指定表名
func (OrderAccessAudit) TableName() string {
	return "order_access_audits"
}
