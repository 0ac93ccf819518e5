package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aipath-api/internal/authz"
	"github.com/aipath-api/internal/cache"
	"github.com/aipath-api/internal/config"
	adminhandlers "github.com/aipath-api/internal/http/handlers/admin"
	publichandlers "github.com/aipath-api/internal/http/handlers/public"
	"github.com/aipath-api/internal/http/response"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// 面向前端函数与 Stripe 的接口路径，跨域由处理器自行应答
const (
	checkoutSessionPath      = "/api/v1/checkout/sessions"
	checkoutSessionAliasPath = "/createCheckoutSession"
	stripeWebhookPath        = "/api/v1/payments/webhook/stripe"
	stripeWebhookAliasPath   = "/stripeWebhook"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aipath"
	}
	redisClient := cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.RateLimit.Checkout.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Checkout.MaxRequests,
		BlockSeconds:  cfg.RateLimit.Checkout.BlockSeconds,
		Plain:         true,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.RateLimit.AdminLogin.WindowSeconds,
		MaxRequests:   cfg.RateLimit.AdminLogin.MaxRequests,
		BlockSeconds:  cfg.RateLimit.AdminLogin.BlockSeconds,
		MessageKey:    "error.rate_limit_exceeded",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS, checkoutSessionPath, checkoutSessionAliasPath, stripeWebhookPath, stripeWebhookAliasPath))

	// 结算与回调（纯文本/JSON 响应，真实 HTTP 状态码）
	checkoutLimiter := RateLimitMiddleware(redisClient, checkoutRule, KeyByIP)
	r.Any(checkoutSessionAliasPath, checkoutLimiter, publicHandler.CreateCheckoutSession)
	r.POST(stripeWebhookAliasPath, publicHandler.StripeWebhook)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.Any("/checkout/sessions", checkoutLimiter, publicHandler.CreateCheckoutSession)
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)

		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/courses", publicHandler.GetCourses)
			public.GET("/courses/:id", publicHandler.GetCourse)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("/users/:user_id")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserAuthService))
		{
			user.GET("/courses", publicHandler.GetUserCourses)
			user.GET("/courses/:course_id", publicHandler.GetUserCourse)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 推广佣金
				authorized.GET("/payouts", adminHandler.GetAdminPayouts)
				authorized.GET("/payouts/:id", adminHandler.GetAdminPayout)
				authorized.PATCH("/payouts/:id/status", adminHandler.UpdateAdminPayoutStatus)

				// 回调事件台账
				authorized.GET("/payment-events", adminHandler.GetAdminPaymentEvents)
				authorized.GET("/payment-events/:id", adminHandler.GetAdminPaymentEvent)

				// 课程目录
				authorized.GET("/courses", adminHandler.GetAdminCourses)
				authorized.GET("/courses/:id", adminHandler.GetAdminCourse)
				authorized.POST("/courses", adminHandler.CreateCourse)
				authorized.PUT("/courses/:id", adminHandler.UpdateCourse)
				authorized.DELETE("/courses/:id", adminHandler.DeleteCourse)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
