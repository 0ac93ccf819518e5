package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/repository"
)

// PayoutService 推广佣金结算后台服务
type PayoutService struct {
	repo repository.AffiliatePayoutRepository
	now  func() time.Time
}

// NewPayoutService 创建佣金结算服务
func NewPayoutService(repo repository.AffiliatePayoutRepository) *PayoutService {
	return &PayoutService{repo: repo, now: time.Now}
}

// UpdatePayoutStatusInput 佣金状态变更输入
type UpdatePayoutStatusInput struct {
	PayoutID uint
	Status   string
	Note     string
	AdminID  uint
}

// List 查询佣金流水
func (s *PayoutService) List(filter repository.PayoutListFilter) ([]models.AffiliatePayout, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !isPayoutStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %s", ErrValidation, filter.Status)
	}
	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return items, total, nil
}

// Get 获取单条佣金流水
func (s *PayoutService) Get(id uint) (*models.AffiliatePayout, error) {
	payout, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}
	return payout, nil
}

// UpdateStatus 结算或取消佣金；仅允许 pending -> paid / cancelled
func (s *PayoutService) UpdateStatus(input UpdatePayoutStatusInput) (*models.AffiliatePayout, error) {
	target := strings.ToLower(strings.TrimSpace(input.Status))
	if target != constants.AffiliatePayoutStatusPaid && target != constants.AffiliatePayoutStatusCancelled {
		return nil, ErrPayoutStatusInvalid
	}
	payout, err := s.Get(input.PayoutID)
	if err != nil {
		return nil, err
	}
	if payout.Status != constants.AffiliatePayoutStatusPending {
		return nil, ErrPayoutStatusInvalid
	}

	var settledAt *time.Time
	if target == constants.AffiliatePayoutStatusPaid {
		now := s.now()
		settledAt = &now
	}
	note := strings.TrimSpace(input.Note)
	updated, err := s.repo.UpdateStatus(payout.ID, constants.AffiliatePayoutStatusPending, target, note, settledAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !updated {
		return nil, ErrPayoutStatusInvalid
	}
	logger.Infow("affiliate_payout_status_updated",
		"payout_id", payout.ID,
		"from", constants.AffiliatePayoutStatusPending,
		"to", target,
		"admin_id", input.AdminID,
	)
	return s.Get(payout.ID)
}

func isPayoutStatus(status string) bool {
	switch status {
	case constants.AffiliatePayoutStatusPending, constants.AffiliatePayoutStatusPaid, constants.AffiliatePayoutStatusCancelled:
		return true
	default:
		return false
	}
}
