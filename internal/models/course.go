package models

import (
	"time"

	"gorm.io/gorm"
)

// Course 课程目录表
type Course struct {
	ID            string         `gorm:"primarykey;type:varchar(64)" json:"id"`              // 课程ID
	Title         string         `gorm:"type:varchar(255);not null;default:''" json:"title"` // 标题
	Description   string         `gorm:"type:text" json:"description"`                       // 描述
	Cost          NullMoney      `gorm:"type:decimal(20,4)" json:"cost"`                     // 价格（为空表示未定价）
	AffiliateLink string         `gorm:"type:varchar(1024);default:''" json:"affiliateLink"` // 外部推广链接
	ImageURL      string         `gorm:"type:varchar(1024);default:''" json:"imageUrl"`      // 封面图
	Level         string         `gorm:"type:varchar(32);default:'';index" json:"level"`     // 难度
	RoleID        string         `gorm:"type:varchar(64);default:'';index" json:"roleId"`    // 关联岗位
	IsActive      bool           `gorm:"default:true;index" json:"isActive"`                 // 是否上架
	SortOrder     int            `gorm:"default:0;index" json:"sortOrder"`                   // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`                             // 创建时间
	UpdatedAt     time.Time      `json:"updatedAt"`                                          // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}
