package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/aipath-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AffiliatePayoutRepository 推广佣金流水数据访问接口
type AffiliatePayoutRepository interface {
	WithTx(tx *gorm.DB) AffiliatePayoutRepository

	CreateIfAbsent(payout *models.AffiliatePayout) (bool, error)
	GetByID(id uint) (*models.AffiliatePayout, error)
	GetBySessionID(sessionID string) (*models.AffiliatePayout, error)
	CountBySessionID(sessionID string) (int64, error)
	List(filter PayoutListFilter) ([]models.AffiliatePayout, int64, error)
	UpdateStatus(id uint, fromStatus, toStatus, note string, settledAt *time.Time) (bool, error)
}

// GormAffiliatePayoutRepository GORM 实现
type GormAffiliatePayoutRepository struct {
	db *gorm.DB
}

// NewAffiliatePayoutRepository 创建佣金流水仓库
func NewAffiliatePayoutRepository(db *gorm.DB) *GormAffiliatePayoutRepository {
	return &GormAffiliatePayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliatePayoutRepository) WithTx(tx *gorm.DB) AffiliatePayoutRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliatePayoutRepository{db: tx}
}

// CreateIfAbsent 按 stripe_session_id 去重写入，返回是否新建
func (r *GormAffiliatePayoutRepository) CreateIfAbsent(payout *models.AffiliatePayout) (bool, error) {
	if payout == nil {
		return false, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(payout)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID 按ID获取佣金流水
func (r *GormAffiliatePayoutRepository) GetByID(id uint) (*models.AffiliatePayout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.AffiliatePayout
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetBySessionID 按 Checkout Session 获取佣金流水
func (r *GormAffiliatePayoutRepository) GetBySessionID(sessionID string) (*models.AffiliatePayout, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var payout models.AffiliatePayout
	if err := r.db.Where("stripe_session_id = ?", sessionID).First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// CountBySessionID 统计某个 Session 的佣金流水数
func (r *GormAffiliatePayoutRepository) CountBySessionID(sessionID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.AffiliatePayout{}).Where("stripe_session_id = ?", strings.TrimSpace(sessionID)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 佣金流水列表
func (r *GormAffiliatePayoutRepository) List(filter PayoutListFilter) ([]models.AffiliatePayout, int64, error) {
	payouts := make([]models.AffiliatePayout, 0)
	query := r.db.Model(&models.AffiliatePayout{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if referrerID := strings.TrimSpace(filter.ReferrerID); referrerID != "" {
		query = query.Where("referrer_id = ?", referrerID)
	}
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if courseID := strings.TrimSpace(filter.CourseID); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// UpdateStatus 条件更新结算状态（仅当当前状态为 fromStatus 时生效）
func (r *GormAffiliatePayoutRepository) UpdateStatus(id uint, fromStatus, toStatus, note string, settledAt *time.Time) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.AffiliatePayout{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":      toStatus,
			"status_note": strings.TrimSpace(note),
			"settled_at":  settledAt,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
