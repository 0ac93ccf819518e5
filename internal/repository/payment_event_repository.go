package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/aipath-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentEventRepository 支付回调事件台账数据访问接口
type PaymentEventRepository interface {
	RecordIfAbsent(event *models.PaymentEvent) (*models.PaymentEvent, bool, error)
	GetByID(id uint) (*models.PaymentEvent, error)
	GetByEventID(provider, eventID string) (*models.PaymentEvent, error)
	MarkStatus(id uint, status, lastError string, processedAt *time.Time) error
	IncrementAttempts(id uint) error
	ListStale(status string, before time.Time, maxAttempts, limit int) ([]models.PaymentEvent, error)
	List(filter PaymentEventListFilter) ([]models.PaymentEvent, int64, error)
}

// GormPaymentEventRepository GORM 实现
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository 创建回调事件仓库
func NewPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// RecordIfAbsent 写入事件台账，已存在时返回原记录
func (r *GormPaymentEventRepository) RecordIfAbsent(event *models.PaymentEvent) (*models.PaymentEvent, bool, error) {
	if event == nil {
		return nil, false, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return event, true, nil
	}
	existing, err := r.GetByEventID(event.Provider, event.EventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID 按ID获取事件
func (r *GormPaymentEventRepository) GetByID(id uint) (*models.PaymentEvent, error) {
	if id == 0 {
		return nil, nil
	}
	var event models.PaymentEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// GetByEventID 按提供方事件ID获取事件
func (r *GormPaymentEventRepository) GetByEventID(provider, eventID string) (*models.PaymentEvent, error) {
	provider = strings.TrimSpace(provider)
	eventID = strings.TrimSpace(eventID)
	if provider == "" || eventID == "" {
		return nil, nil
	}
	var event models.PaymentEvent
	if err := r.db.Where("provider = ? AND event_id = ?", provider, eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// MarkStatus 更新事件处理状态
func (r *GormPaymentEventRepository) MarkStatus(id uint, status, lastError string, processedAt *time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.PaymentEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_error":   lastError,
			"processed_at": processedAt,
			"updated_at":   time.Now(),
		}).Error
}

// IncrementAttempts 处理次数 +1
func (r *GormPaymentEventRepository) IncrementAttempts(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.PaymentEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		}).Error
}

// ListStale 获取长时间未完成处理的事件
func (r *GormPaymentEventRepository) ListStale(status string, before time.Time, maxAttempts, limit int) ([]models.PaymentEvent, error) {
	events := make([]models.PaymentEvent, 0)
	query := r.db.Where("status = ? AND updated_at < ?", status, before)
	if maxAttempts > 0 {
		query = query.Where("attempts < ?", maxAttempts)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// List 事件台账列表
func (r *GormPaymentEventRepository) List(filter PaymentEventListFilter) ([]models.PaymentEvent, int64, error) {
	events := make([]models.PaymentEvent, 0)
	query := r.db.Model(&models.PaymentEvent{})
	if provider := strings.TrimSpace(filter.Provider); provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if sessionID := strings.TrimSpace(filter.SessionID); sessionID != "" {
		query = query.Where("stripe_session_id = ?", sessionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
