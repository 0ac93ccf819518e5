package provider

import (
	"github.com/aipath-api/internal/logger"

	"go.uber.org/zap"
)

// stripeLogger 将 stripe-go 的分级日志转到 zap，级别由 zap 配置过滤
type stripeLogger struct {
	sugar *zap.SugaredLogger
}

func newStripeLogger() *stripeLogger {
	return &stripeLogger{sugar: logger.S().With("component", "stripe")}
}

func (l *stripeLogger) Debugf(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *stripeLogger) Infof(format string, v ...interface{})  { l.sugar.Debugf(format, v...) }
func (l *stripeLogger) Warnf(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *stripeLogger) Errorf(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }
