package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户身份表（与外部身份服务的 uid 对应）
type User struct {
	ID          string         `gorm:"primarykey;type:varchar(128)" json:"id"`          // 用户 uid
	Email       string         `gorm:"type:varchar(255);index" json:"email"`            // 邮箱
	DisplayName string         `gorm:"default:''" json:"display_name"`                  // 昵称
	Status      string         `gorm:"type:varchar(20);default:'active'" json:"status"` // 账号状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
