package provider

import (
	"time"

	"github.com/aipath-api/internal/authz"
	"github.com/aipath-api/internal/cache"
	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/queue"
	"github.com/aipath-api/internal/repository"
	"github.com/aipath-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config        *config.Config
	QueueClient   *queue.Client
	StripeGateway *stripe.Gateway

	// Repositories
	AdminRepo           repository.AdminRepository
	UserRepo            repository.UserRepository
	CourseRepo          repository.CourseRepository
	EntitlementRepo     repository.EntitlementRepository
	AffiliatePayoutRepo repository.AffiliatePayoutRepository
	PaymentEventRepo    repository.PaymentEventRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CourseService       *service.CourseService
	CheckoutService     *service.CheckoutService
	ReconcileService    *service.ReconcileService
	WebhookService      *service.WebhookService
	EntitlementService  *service.EntitlementService
	PayoutService       *service.PayoutService
	PaymentEventService *service.PaymentEventService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	gateway, err := stripe.NewGateway(stripe.Config{
		SecretKey:               cfg.Stripe.SecretKey,
		WebhookSecret:           cfg.Stripe.WebhookSecret,
		APIBaseURL:              cfg.Stripe.APIBaseURL,
		WebhookToleranceSeconds: cfg.Stripe.WebhookToleranceSeconds,
		PaymentMethodTypes:      cfg.Stripe.PaymentMethodTypes,
		Currency:                cfg.Stripe.Currency,
		Logger:                  newStripeLogger(),
	})
	if err != nil {
		logger.Errorw("provider_init_stripe_gateway_failed", "error", err)
		return nil, err
	}

	c := &Container{
		Config:        cfg,
		QueueClient:   queueClient,
		StripeGateway: gateway,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CourseRepo = repository.NewCourseRepository(db)
	c.EntitlementRepo = repository.NewEntitlementRepository(db)
	c.AffiliatePayoutRepo = repository.NewAffiliatePayoutRepository(db)
	c.PaymentEventRepo = repository.NewPaymentEventRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config.UserJWT)
	c.CourseService = service.NewCourseService(c.CourseRepo, time.Duration(c.Config.Cache.CourseTTLSeconds)*time.Second)
	c.CheckoutService = service.NewCheckoutService(c.CourseRepo, c.UserRepo, c.StripeGateway, c.StripeGateway.Currency(), c.Config.Stripe.FrontendURL)
	c.ReconcileService = service.NewReconcileService(c.EntitlementRepo, c.AffiliatePayoutRepo, c.CourseRepo, c.Config.Affiliate.Rate())
	c.WebhookService = service.NewWebhookService(c.StripeGateway, c.PaymentEventRepo, c.ReconcileService, c.QueueClient)
	c.EntitlementService = service.NewEntitlementService(c.EntitlementRepo)
	c.PayoutService = service.NewPayoutService(c.AffiliatePayoutRepo)
	c.PaymentEventService = service.NewPaymentEventService(c.PaymentEventRepo)
	return nil
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
