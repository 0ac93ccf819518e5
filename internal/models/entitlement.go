package models

import "time"

// Entitlement 用户课程权益表，(user_id, course_id) 唯一
type Entitlement struct {
	ID                  uint       `gorm:"primarykey" json:"-"`                                                                      // 主键
	UserID              string     `gorm:"type:varchar(128);not null;index:idx_entitlement_user_course,unique" json:"userId"`        // 用户ID
	CourseID            string     `gorm:"type:varchar(64);not null;index:idx_entitlement_user_course,unique;index" json:"courseId"` // 课程ID
	Paid                bool       `gorm:"not null;default:false" json:"paid"`                                                       // 是否已支付
	PaymentDate         *time.Time `json:"paymentDate"`                                                                              // 支付时间
	StripeSessionID     string     `gorm:"type:varchar(255);not null;default:'';index" json:"stripeSessionId"`                       // Checkout Session ID
	Progress            string     `gorm:"type:varchar(32);not null;default:''" json:"progress"`                                     // 学习进度
	CourseTitle         string     `gorm:"type:varchar(255);not null;default:''" json:"courseTitle"`                                 // 课程标题快照
	CourseAffiliateLink string     `gorm:"type:varchar(1024);not null;default:''" json:"courseAffiliateLink"`                        // 推广链接快照
	CostPaid            Money      `gorm:"type:decimal(20,4);not null;default:0" json:"costPaid"`                                    // 实付金额
	Currency            string     `gorm:"type:varchar(8);not null;default:''" json:"currency"`                                      // 币种
	CreatedAt           time.Time  `json:"createdAt"`                                                                                // 创建时间
	UpdatedAt           time.Time  `json:"updatedAt"`                                                                                // 更新时间
}

// TableName 指定表名
func (Entitlement) TableName() string {
	return "entitlements"
}
