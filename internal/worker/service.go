package worker

import (
	"context"
	"errors"
	"time"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultSweepInterval    = 5 * time.Minute
	defaultSweepStaleAfter  = 30 * time.Minute
	defaultSweepMaxAttempts = 20
)

// Service 异步队列服务
type Service struct {
	name        string
	server      *asynq.Server
	mux         *asynq.ServeMux
	consumer    *Consumer
	sweepEvery  time.Duration
	staleAfter  time.Duration
	maxAttempts int
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = newAsynqLogger()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:        "worker",
		server:      server,
		mux:         mux,
		consumer:    consumer,
		sweepEvery:  resolveDuration(cfg.SweepIntervalSecs, time.Second, defaultSweepInterval),
		staleAfter:  resolveDuration(cfg.SweepStaleMinutes, time.Minute, defaultSweepStaleAfter),
		maxAttempts: resolveMaxAttempts(cfg.SweepMaxAttempts),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.WebhookService != nil {
		go s.runSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSweepLoop 定期把长时间失败的回调事件重新投递到对账队列
func (s *Service) runSweepLoop(ctx context.Context) {
	runOnce := func() {
		count, err := s.consumer.WebhookService.SweepFailedEvents(s.staleAfter, s.maxAttempts)
		if err != nil {
			logger.Warnw("worker_payment_event_sweep_failed", "error", err)
			return
		}
		if count > 0 {
			logger.Infow("worker_payment_event_sweep_done", "count", count)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func resolveDuration(value int, unit, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * unit
}

func resolveMaxAttempts(value int) int {
	if value <= 0 {
		return defaultSweepMaxAttempts
	}
	return value
}
