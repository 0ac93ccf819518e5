package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 支付对账等高优先级队列
	CriticalQueue = constants.QueueCritical

	defaultReconcileMaxRetry = 8
)

// Client 队列客户端封装
type Client struct {
	client            *asynq.Client
	inspector         *asynq.Inspector
	enabled           bool
	defaultQueue      string
	reconcileMaxRetry int
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue, reconcileMaxRetry: defaultReconcileMaxRetry}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	inspector := asynq.NewInspector(opt)
	maxRetry := cfg.ReconcileMaxRetry
	if maxRetry <= 0 {
		maxRetry = defaultReconcileMaxRetry
	}
	return &Client{
		client:            client,
		inspector:         inspector,
		enabled:           true,
		defaultQueue:      DefaultQueue,
		reconcileMaxRetry: maxRetry,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.inspector != nil {
		_ = c.inspector.Close()
	}
	return c.client.Close()
}

// EnqueueEntitlementReconcile 推送权益对账重试任务。
// 同一事件同时只保留一个待执行任务：已有任务仍会执行时视为成功；
// 已归档或已完成的旧任务会被删除后重新投递。返回 nil 即保证存在一个会被执行的任务。
func (c *Client) EnqueueEntitlementReconcile(payload EntitlementReconcilePayload, delay time.Duration) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewEntitlementReconcileTask(payload)
	if err != nil {
		return err
	}
	taskID := reconcileTaskID(payload)
	for attempt := 0; attempt < 2; attempt++ {
		_, err = c.client.Enqueue(task,
			asynq.Queue(CriticalQueue),
			asynq.MaxRetry(c.reconcileMaxRetry),
			asynq.ProcessIn(delay),
			asynq.TaskID(taskID),
			asynq.Retention(24*time.Hour),
		)
		if !errors.Is(err, asynq.ErrTaskIDConflict) {
			return err
		}
		live, err := c.releaseFinishedTask(taskID)
		if err != nil {
			return err
		}
		if live {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskConflict, taskID)
}

// releaseFinishedTask 检查占用任务 ID 的旧任务：仍会执行返回 true；
// 已归档或已完成则删除，释放任务 ID。
func (c *Client) releaseFinishedTask(taskID string) (bool, error) {
	if c.inspector == nil {
		return false, ErrQueueDisabled
	}
	info, err := c.inspector.GetTaskInfo(CriticalQueue, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect reconcile task failed: %w", err)
	}
	switch info.State {
	case asynq.TaskStatePending, asynq.TaskStateScheduled, asynq.TaskStateRetry, asynq.TaskStateAggregating:
		return true, nil
	case asynq.TaskStateActive:
		// 执行中的任务若已是最后一次重试，失败后会直接归档，不能作为后续保障
		if info.Retried < info.MaxRetry {
			return true, nil
		}
		return false, fmt.Errorf("%w: %s is on its final attempt", ErrTaskConflict, taskID)
	}
	if err := c.inspector.DeleteTask(CriticalQueue, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("release reconcile task failed: %w", err)
	}
	return false, nil
}

func reconcileTaskID(payload EntitlementReconcilePayload) string {
	return fmt.Sprintf("%s:%d", TaskEntitlementReconcile, payload.PaymentEventID)
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{CriticalQueue: 6, DefaultQueue: 3}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
