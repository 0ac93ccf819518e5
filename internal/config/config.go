package config

import (
	"fmt"
	"strings"

	"github.com/aipath-api/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	UserJWT   JWTConfig       `mapstructure:"user_jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Affiliate AffiliateConfig `mapstructure:"affiliate"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name          string `mapstructure:"name"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
	// ReadHeaderTimeoutSeconds 请求头读取超时
	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
	// WriteTimeoutSeconds 响应写出超时，需覆盖 Stripe 建单的网络耗时
	WriteTimeoutSeconds    int `mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled           bool           `mapstructure:"enabled"`
	Host              string         `mapstructure:"host"`
	Port              int            `mapstructure:"port"`
	Password          string         `mapstructure:"password"`
	DB                int            `mapstructure:"db"`
	Concurrency       int            `mapstructure:"concurrency"`
	Queues            map[string]int `mapstructure:"queues"`
	ReconcileMaxRetry int            `mapstructure:"reconcile_max_retry"`
	SweepIntervalSecs int            `mapstructure:"sweep_interval_seconds"`
	SweepStaleMinutes int            `mapstructure:"sweep_stale_minutes"`
	SweepMaxAttempts  int            `mapstructure:"sweep_max_attempts"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// StripeConfig Stripe 支付配置
type StripeConfig struct {
	SecretKey               string   `mapstructure:"secret_key"`
	WebhookSecret           string   `mapstructure:"webhook_secret"`
	APIBaseURL              string   `mapstructure:"api_base_url"`
	WebhookToleranceSeconds int      `mapstructure:"webhook_tolerance_seconds"`
	Currency                string   `mapstructure:"currency"`
	FrontendURL             string   `mapstructure:"frontend_url"`
	PaymentMethodTypes      []string `mapstructure:"payment_method_types"`
}

// AffiliateConfig 推广佣金配置
type AffiliateConfig struct {
	CommissionRate string `mapstructure:"commission_rate"`
}

// Rate 返回佣金比例，非法值回落到 0.10
func (c AffiliateConfig) Rate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.CommissionRate))
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.RequireFromString("0.10")
	}
	return rate
}

// RateLimitRule 限流规则
type RateLimitRule struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	Checkout   RateLimitRule `mapstructure:"checkout"`
	AdminLogin RateLimitRule `mapstructure:"admin_login"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	CourseTTLSeconds int `mapstructure:"course_ttl_seconds"`
}

// Validate 校验启动必需配置
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(c.Stripe.SecretKey) == "" {
		return fmt.Errorf("stripe.secret_key is required")
	}
	if strings.TrimSpace(c.Stripe.WebhookSecret) == "" {
		return fmt.Errorf("stripe.webhook_secret is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	return nil
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := unmarshal(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Stripe.Currency = strings.ToLower(strings.TrimSpace(cfg.Stripe.Currency))
	cfg.Stripe.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.Stripe.FrontendURL), "/")
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")     // 从当前目录查找
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	v.SetDefault("app.name", "aipath")
	v.SetDefault("app.admin_username", "admin")
	v.SetDefault("app.admin_password", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_header_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "aipath.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/aipath.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("user_jwt.secret", "user-change-me-in-production")
	v.SetDefault("user_jwt.expire_hours", 168)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "aipath")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"critical": 6,
		"default":  3,
	})
	v.SetDefault("queue.reconcile_max_retry", 8)
	v.SetDefault("queue.sweep_interval_seconds", 300)
	v.SetDefault("queue.sweep_stale_minutes", 30)
	v.SetDefault("queue.sweep_max_attempts", 20)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Authorization",
		"X-Requested-With",
		"X-Request-ID",
		"X-User-Id",
	})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 3600)
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.api_base_url", "")
	v.SetDefault("stripe.webhook_tolerance_seconds", 300)
	v.SetDefault("stripe.currency", "usd")
	v.SetDefault("stripe.frontend_url", "http://localhost:5173")
	v.SetDefault("stripe.payment_method_types", []string{"card"})
	v.SetDefault("affiliate.commission_rate", "0.10")
	v.SetDefault("rate_limit.checkout.window_seconds", 60)
	v.SetDefault("rate_limit.checkout.max_requests", 20)
	v.SetDefault("rate_limit.checkout.block_seconds", 60)
	v.SetDefault("rate_limit.admin_login.window_seconds", 300)
	v.SetDefault("rate_limit.admin_login.max_requests", 5)
	v.SetDefault("rate_limit.admin_login.block_seconds", 900)
	v.SetDefault("cache.course_ttl_seconds", 300)

	// 环境变量支持，例如 stripe.webhook_secret -> STRIPE_WEBHOOK_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
