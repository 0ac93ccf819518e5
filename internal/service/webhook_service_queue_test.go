package service

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func attachRedisQueue(t *testing.T, f *webhookFixture) *asynq.Inspector {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse miniredis port failed: %v", err)
	}
	client, err := queue.NewClient(&config.QueueConfig{Enabled: true, Host: mr.Host(), Port: port, ReconcileMaxRetry: 2})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = inspector.Close()
		_ = client.Close()
	})
	f.svc.taskQueue = client
	return inspector
}

func retryTaskState(t *testing.T, inspector *asynq.Inspector, paymentEventID uint) asynq.TaskState {
	t.Helper()
	taskID := fmt.Sprintf("%s:%d", queue.TaskEntitlementReconcile, paymentEventID)
	info, err := inspector.GetTaskInfo(queue.CriticalQueue, taskID)
	if err != nil {
		t.Fatalf("get task %s failed: %v", taskID, err)
	}
	return info.State
}

func archiveRetryTask(t *testing.T, inspector *asynq.Inspector, paymentEventID uint) {
	t.Helper()
	taskID := fmt.Sprintf("%s:%d", queue.TaskEntitlementReconcile, paymentEventID)
	if err := inspector.ArchiveTask(queue.CriticalQueue, taskID); err != nil {
		t.Fatalf("archive task %s failed: %v", taskID, err)
	}
}

func TestDeferredWebhookAlwaysLeavesLiveRetryTask(t *testing.T) {
	f := newWebhookFixture(t, "webhook_redis_retry")
	seedCourse(t, f.db, mlCourse())
	inspector := attachRedisQueue(t, f)
	f.spy.err = ErrReconcileFailed

	input := signEvent(t, testWebhookSecret, completedEvent("evt_exhausted", map[string]interface{}{
		"courseId": "c1",
		"userId":   "u1",
	}, 4999))
	result, err := f.svc.HandleStripeWebhook(input)
	if err != nil || !result.Deferred {
		t.Fatalf("first delivery should be deferred, result=%+v err=%v", result, err)
	}
	record := f.eventStatus(t, "evt_exhausted")
	if state := retryTaskState(t, inspector, record.ID); state != asynq.TaskStateScheduled {
		t.Fatalf("expected scheduled retry task, got %s", state)
	}

	// 重试耗尽后任务被归档，Stripe 重新投递时必须重新排队
	archiveRetryTask(t, inspector, record.ID)
	result, err = f.svc.HandleStripeWebhook(input)
	if err != nil || !result.Deferred {
		t.Fatalf("redelivery should be deferred, result=%+v err=%v", result, err)
	}
	if state := retryTaskState(t, inspector, record.ID); state != asynq.TaskStateScheduled {
		t.Fatalf("redelivery acked without a live retry task, state=%s", state)
	}

	archiveRetryTask(t, inspector, record.ID)
	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	count, err := f.svc.SweepFailedEvents(30*time.Minute, 10)
	if err != nil || count != 1 {
		t.Fatalf("sweep should requeue the failed event, count=%d err=%v", count, err)
	}
	if state := retryTaskState(t, inspector, record.ID); state != asynq.TaskStatePending {
		t.Fatalf("sweep reported enqueue without a live task, state=%s", state)
	}
	if got := f.eventStatus(t, "evt_exhausted"); got.Status != constants.PaymentEventStatusFailed {
		t.Fatalf("event should stay failed until a retry succeeds: %+v", got)
	}
}
