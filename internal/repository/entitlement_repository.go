package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/aipath-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntitlementRepository 用户课程权益数据访问接口
type EntitlementRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) EntitlementRepository

	GetByUserAndCourse(userID, courseID string) (*models.Entitlement, error)
	ListByUser(userID string) ([]models.Entitlement, error)
	Upsert(entitlement *models.Entitlement) error
}

// GormEntitlementRepository GORM 实现
type GormEntitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository 创建权益仓库
func NewEntitlementRepository(db *gorm.DB) *GormEntitlementRepository {
	return &GormEntitlementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormEntitlementRepository) WithTx(tx *gorm.DB) EntitlementRepository {
	if tx == nil {
		return r
	}
	return &GormEntitlementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormEntitlementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByUserAndCourse 按 (用户, 课程) 获取权益
func (r *GormEntitlementRepository) GetByUserAndCourse(userID, courseID string) (*models.Entitlement, error) {
	userID = strings.TrimSpace(userID)
	courseID = strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return nil, nil
	}
	var entitlement models.Entitlement
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&entitlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entitlement, nil
}

// ListByUser 获取用户全部课程权益
func (r *GormEntitlementRepository) ListByUser(userID string) ([]models.Entitlement, error) {
	entitlements := make([]models.Entitlement, 0)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entitlements, nil
	}
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC, id DESC").Find(&entitlements).Error; err != nil {
		return nil, err
	}
	return entitlements, nil
}

// Upsert 按 (user_id, course_id) 合并写入权益，保留已有学习进度
func (r *GormEntitlementRepository) Upsert(entitlement *models.Entitlement) error {
	if entitlement == nil {
		return nil
	}
	if entitlement.UpdatedAt.IsZero() {
		entitlement.UpdatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"paid":                  entitlement.Paid,
			"payment_date":          entitlement.PaymentDate,
			"stripe_session_id":     entitlement.StripeSessionID,
			"course_title":          entitlement.CourseTitle,
			"course_affiliate_link": entitlement.CourseAffiliateLink,
			"cost_paid":             entitlement.CostPaid,
			"currency":              entitlement.Currency,
			"progress":              gorm.Expr(keepProgressExpr),
			"updated_at":            entitlement.UpdatedAt,
		}),
	}).Create(entitlement).Error
}
