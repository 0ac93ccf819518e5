package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileService 支付完成后的权益与推广佣金对账服务
type ReconcileService struct {
	entitlementRepo repository.EntitlementRepository
	payoutRepo      repository.AffiliatePayoutRepository
	courseRepo      repository.CourseRepository
	commissionRate  decimal.Decimal
	now             func() time.Time
}

// NewReconcileService 创建对账服务
func NewReconcileService(entitlementRepo repository.EntitlementRepository, payoutRepo repository.AffiliatePayoutRepository, courseRepo repository.CourseRepository, commissionRate decimal.Decimal) *ReconcileService {
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(1)) {
		commissionRate = decimal.RequireFromString(constants.DefaultCommissionRate)
	}
	return &ReconcileService{
		entitlementRepo: entitlementRepo,
		payoutRepo:      payoutRepo,
		courseRepo:      courseRepo,
		commissionRate:  commissionRate,
		now:             time.Now,
	}
}

// ReconcileInput 已确认支付的 Checkout Session
type ReconcileInput struct {
	UserID      string
	CourseID    string
	SessionID   string
	AmountMinor int64
	Currency    string
	ReferrerID  string
}

// ReconcileResult 对账结果，仅用于日志与测试
type ReconcileResult struct {
	EntitlementWritten bool
	PayoutCreated      bool
	Duplicate          bool
	AmountPaid         decimal.Decimal
	PayoutAmount       decimal.Decimal
}

// Reconcile 授予课程权益并记录推广佣金；同一 Session 重复执行只生效一次
func (s *ReconcileService) Reconcile(input ReconcileInput) (*ReconcileResult, error) {
	userID := strings.TrimSpace(input.UserID)
	courseID := strings.TrimSpace(input.CourseID)
	sessionID := strings.TrimSpace(input.SessionID)
	referrerID := strings.TrimSpace(input.ReferrerID)
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if userID == "" || courseID == "" || sessionID == "" {
		return nil, fmt.Errorf("%w: user, course and session are required", ErrValidation)
	}
	if input.AmountMinor < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	log := logger.SW(
		"user_id", userID,
		"course_id", courseID,
		"session_id", sessionID,
	)

	course, err := s.courseRepo.GetByID(courseID, false)
	if err != nil {
		log.Errorw("reconcile_course_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}
	title := constants.UnknownCourseTitle
	affiliateLink := ""
	if course == nil {
		log.Warnw("reconcile_course_missing")
	} else {
		if strings.TrimSpace(course.Title) != "" {
			title = strings.TrimSpace(course.Title)
		}
		affiliateLink = strings.TrimSpace(course.AffiliateLink)
	}

	amountPaid := stripe.FromMinorAmount(input.AmountMinor, currency)
	paidAt := s.now()
	result := &ReconcileResult{AmountPaid: amountPaid, PayoutAmount: decimal.Zero}

	err = s.entitlementRepo.Transaction(func(tx *gorm.DB) error {
		entitlementRepo := s.entitlementRepo.WithTx(tx)
		payoutRepo := s.payoutRepo.WithTx(tx)

		existing, err := entitlementRepo.GetByUserAndCourse(userID, courseID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Paid && existing.StripeSessionID == sessionID {
			result.Duplicate = true
		} else {
			entitlement := &models.Entitlement{
				UserID:              userID,
				CourseID:            courseID,
				Paid:                true,
				PaymentDate:         &paidAt,
				StripeSessionID:     sessionID,
				Progress:            constants.EntitlementProgressStarted,
				CourseTitle:         title,
				CourseAffiliateLink: affiliateLink,
				CostPaid:            models.NewMoneyFromDecimal(amountPaid),
				Currency:            currency,
				CreatedAt:           paidAt,
				UpdatedAt:           paidAt,
			}
			if err := entitlementRepo.Upsert(entitlement); err != nil {
				return err
			}
			result.EntitlementWritten = true
		}

		if referrerID == "" || !amountPaid.IsPositive() {
			return nil
		}
		payoutAmount := amountPaid.Mul(s.commissionRate)
		created, err := payoutRepo.CreateIfAbsent(&models.AffiliatePayout{
			ReferrerID:      referrerID,
			UserID:          userID,
			CourseID:        courseID,
			PayoutAmount:    models.NewMoneyFromDecimal(payoutAmount),
			PaymentAmount:   models.NewMoneyFromDecimal(amountPaid),
			Currency:        currency,
			PaymentDate:     paidAt,
			StripeSessionID: sessionID,
			Status:          constants.AffiliatePayoutStatusPending,
		})
		if err != nil {
			return err
		}
		result.PayoutCreated = created
		if created {
			result.PayoutAmount = payoutAmount
		}
		return nil
	})
	if err != nil {
		log.Errorw("entitlement_reconcile_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}

	log.Infow("entitlement_reconciled",
		"amount_paid", amountPaid.String(),
		"currency", currency,
		"entitlement_written", result.EntitlementWritten,
		"duplicate", result.Duplicate,
	)
	if result.PayoutCreated {
		log.Infow("affiliate_payout_created",
			"referrer_id", referrerID,
			"payout_amount", result.PayoutAmount.String(),
		)
	}
	return result, nil
}
