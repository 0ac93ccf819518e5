package models

import (
	"time"

	"github.com/aipath-api/internal/constants"
)

// PaymentEvent 支付回调事件台账，(provider, event_id) 唯一
type PaymentEvent struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                                                     // 主键
	Provider        string     `gorm:"type:varchar(32);not null;index:idx_payment_event_provider_event,unique" json:"provider"`  // 支付提供方
	EventID         string     `gorm:"type:varchar(255);not null;index:idx_payment_event_provider_event,unique" json:"event_id"` // 提供方事件ID
	EventType       string     `gorm:"type:varchar(128);not null;index" json:"event_type"`                                       // 事件类型
	StripeSessionID string     `gorm:"type:varchar(255);not null;default:'';index" json:"stripe_session_id"`                     // 关联 Session
	Status          string     `gorm:"type:varchar(32);not null;index" json:"status"`                                            // 处理状态
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`                                                       // 处理次数
	LastError       string     `gorm:"type:text" json:"last_error"`                                                              // 最近一次错误
	Payload         string     `gorm:"type:text" json:"-"`                                                                       // 原始事件体
	ProcessedAt     *time.Time `gorm:"index" json:"processed_at,omitempty"`                                                      // 处理完成时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                                                  // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"`                                                                  // 更新时间
}

// TableName 指定表名
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// IsSettled 事件是否已终态处理
func (e *PaymentEvent) IsSettled() bool {
	if e == nil {
		return false
	}
	return e.Status == constants.PaymentEventStatusProcessed || e.Status == constants.PaymentEventStatusIgnored
}
