package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/repository"
)

// CheckoutGateway 支付会话创建能力
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, input stripe.CheckoutInput) (*stripe.CheckoutResult, error)
}

// CheckoutService 课程结算会话服务
type CheckoutService struct {
	courseRepo  repository.CourseRepository
	userRepo    repository.UserRepository
	gateway     CheckoutGateway
	currency    string
	frontendURL string
}

// NewCheckoutService 创建结算会话服务
func NewCheckoutService(courseRepo repository.CourseRepository, userRepo repository.UserRepository, gateway CheckoutGateway, currency, frontendURL string) *CheckoutService {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &CheckoutService{
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		currency:    currency,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
	}
}

// CreateCheckoutSessionInput 创建结算会话输入
type CreateCheckoutSessionInput struct {
	CourseID   string
	UserID     string
	ReferrerID string
	UserEmail  string
	// ReturnBaseURL 支付完成/取消后跳回的前端地址，为空时使用配置
	ReturnBaseURL string
	Context       context.Context
}

// CreateCheckoutSessionResult 创建结算会话结果
type CreateCheckoutSessionResult struct {
	SessionID  string
	URL        string
	UnitAmount int64
	Currency   string
}

// CreateCheckoutSession 校验请求、读取课程价格并创建 Stripe Checkout Session
func (s *CheckoutService) CreateCheckoutSession(input CreateCheckoutSessionInput) (*CreateCheckoutSessionResult, error) {
	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	courseID := strings.TrimSpace(input.CourseID)
	userID := strings.TrimSpace(input.UserID)
	referrerID := strings.TrimSpace(input.ReferrerID)
	if courseID == "" || userID == "" {
		return nil, ErrCheckoutFieldsMissing
	}
	log := logger.SW("course_id", courseID, "user_id", userID)

	course, err := s.courseRepo.GetByID(courseID, true)
	if err != nil {
		log.Errorw("checkout_course_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	unitAmount, err := stripe.ToMinorAmount(course.Cost.OrZero(), s.currency)
	if err != nil {
		log.Errorw("checkout_course_price_invalid", "cost", course.Cost.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCoursePriceInvalid, err)
	}

	title := strings.TrimSpace(course.Title)
	if title == "" {
		title = constants.UnknownCourseTitle
	}
	baseURL := strings.TrimRight(strings.TrimSpace(input.ReturnBaseURL), "/")
	if baseURL == "" {
		baseURL = s.frontendURL
	}

	result, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutInput{
		Item: stripe.LineItem{
			Name:       title,
			ImageURL:   course.ImageURL,
			UnitAmount: unitAmount,
			Quantity:   1,
		},
		Currency:      s.currency,
		SuccessURL:    baseURL + constants.CheckoutSuccessPath,
		CancelURL:     baseURL + constants.CheckoutCancelPath,
		CustomerEmail: s.resolveCustomerEmail(userID, input.UserEmail),
		Metadata: stripe.CheckoutMetadata{
			CourseID:   courseID,
			ReferrerID: referrerID,
			UserID:     userID,
		},
	})
	if err != nil {
		log.Errorw("checkout_session_create_failed", "unit_amount", unitAmount, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutProviderFailed, err)
	}

	log.Infow("checkout_session_created",
		"session_id", result.SessionID,
		"unit_amount", unitAmount,
		"currency", s.currency,
		"has_referrer", referrerID != "",
	)
	return &CreateCheckoutSessionResult{
		SessionID:  result.SessionID,
		URL:        result.URL,
		UnitAmount: unitAmount,
		Currency:   s.currency,
	}, nil
}

// resolveCustomerEmail 优先使用请求中的邮箱，其次查询用户表；查询失败不阻断下单
func (s *CheckoutService) resolveCustomerEmail(userID, explicit string) string {
	if email := strings.TrimSpace(explicit); email != "" {
		return email
	}
	if s.userRepo == nil {
		return ""
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		logger.Warnw("checkout_user_email_lookup_failed", "user_id", userID, "error", err)
		return ""
	}
	if user == nil {
		return ""
	}
	return strings.TrimSpace(user.Email)
}

