package models

import "time"

// AffiliatePayout 推广佣金结算流水，每个 Checkout Session 至多一条
type AffiliatePayout struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                          // 主键
	ReferrerID      string     `gorm:"type:varchar(128);not null;index" json:"referrerId"`            // 推荐人
	UserID          string     `gorm:"type:varchar(128);not null;index" json:"userId"`                // 付款用户
	CourseID        string     `gorm:"type:varchar(64);not null;index" json:"courseId"`               // 课程ID
	PayoutAmount    Money      `gorm:"type:decimal(20,4);not null;default:0" json:"payoutAmount"`     // 佣金金额
	PaymentAmount   Money      `gorm:"type:decimal(20,4);not null;default:0" json:"paymentAmount"`    // 支付金额
	Currency        string     `gorm:"type:varchar(8);not null;default:''" json:"currency"`           // 币种
	PaymentDate     time.Time  `gorm:"index" json:"paymentDate"`                                      // 支付时间
	StripeSessionID string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"stripeSessionId"` // Checkout Session ID
	Status          string     `gorm:"type:varchar(32);not null;index" json:"status"`                 // 结算状态
	StatusNote      string     `gorm:"type:varchar(255);not null;default:''" json:"statusNote"`       // 状态备注
	SettledAt       *time.Time `json:"settledAt,omitempty"`                                           // 结算时间
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`                                        // 创建时间
	UpdatedAt       time.Time  `json:"updatedAt"`                                                     // 更新时间
}

// TableName 指定表名
func (AffiliatePayout) TableName() string {
	return "affiliate_payouts"
}
