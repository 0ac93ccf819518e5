package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/provider"
	"github.com/aipath-api/internal/queue"
	"github.com/aipath-api/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskEntitlementReconcile, c.handleEntitlementReconcile)
}

func (c *Consumer) handleEntitlementReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_entitlement_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseEntitlementReconcilePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_entitlement_reconcile_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PaymentEventID == 0 {
		logger.Debugw("worker_entitlement_reconcile_skip_invalid_payload", "event_id", payload.EventID)
		return nil
	}
	if c.WebhookService == nil {
		logger.Warnw("worker_entitlement_reconcile_skip_service_nil", "payment_event_id", payload.PaymentEventID)
		return nil
	}
	if err := c.WebhookService.ReprocessPaymentEvent(payload.PaymentEventID); err != nil {
		if errors.Is(err, service.ErrPaymentEventNotFound) {
			logger.Debugw("worker_entitlement_reconcile_skip_event_not_found", "payment_event_id", payload.PaymentEventID)
			return nil
		}
		logger.Warnw("worker_entitlement_reconcile_failed",
			"payment_event_id", payload.PaymentEventID,
			"event_id", payload.EventID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_entitlement_reconcile_done", "payment_event_id", payload.PaymentEventID, "event_id", payload.EventID)
	return nil
}
