package service

import (
	"fmt"
	"strings"

	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/repository"
)

// PaymentEventService 回调事件台账查询服务
type PaymentEventService struct {
	repo repository.PaymentEventRepository
}

// NewPaymentEventService 创建回调事件台账查询服务
func NewPaymentEventService(repo repository.PaymentEventRepository) *PaymentEventService {
	return &PaymentEventService{repo: repo}
}

// List 查询回调事件
func (s *PaymentEventService) List(filter repository.PaymentEventListFilter) ([]models.PaymentEvent, int64, error) {
	filter.Provider = strings.ToLower(strings.TrimSpace(filter.Provider))
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return items, total, nil
}

// Get 获取单条回调事件
func (s *PaymentEventService) Get(id uint) (*models.PaymentEvent, error) {
	event, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if event == nil {
		return nil, ErrPaymentEventNotFound
	}
	return event, nil
}
