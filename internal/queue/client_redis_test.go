package queue

import (
	"errors"
	"strconv"
	"testing"

	"github.com/aipath-api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func newRedisQueue(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse miniredis port failed: %v", err)
	}
	client, err := NewClient(&config.QueueConfig{Enabled: true, Host: mr.Host(), Port: port, ReconcileMaxRetry: 3})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = inspector.Close()
		_ = client.Close()
	})
	return client, inspector
}

func reconcileTaskState(t *testing.T, inspector *asynq.Inspector, payload EntitlementReconcilePayload) asynq.TaskState {
	t.Helper()
	info, err := inspector.GetTaskInfo(CriticalQueue, reconcileTaskID(payload))
	if err != nil {
		t.Fatalf("get task info failed: %v", err)
	}
	return info.State
}

func TestEnqueueReconcileKeepsSingleLiveTask(t *testing.T) {
	client, inspector := newRedisQueue(t)
	payload := EntitlementReconcilePayload{PaymentEventID: 7, EventID: "evt_7"}

	if err := client.EnqueueEntitlementReconcile(payload, 0); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	if err := client.EnqueueEntitlementReconcile(payload, 0); err != nil {
		t.Fatalf("enqueue while task is pending should succeed, got %v", err)
	}
	pending, err := inspector.ListPendingTasks(CriticalQueue)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending task, got %d", len(pending))
	}
}

func TestEnqueueReconcileReplacesArchivedTask(t *testing.T) {
	client, inspector := newRedisQueue(t)
	payload := EntitlementReconcilePayload{PaymentEventID: 9, EventID: "evt_9"}

	if err := client.EnqueueEntitlementReconcile(payload, 0); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	if err := inspector.ArchiveTask(CriticalQueue, reconcileTaskID(payload)); err != nil {
		t.Fatalf("archive task failed: %v", err)
	}
	if state := reconcileTaskState(t, inspector, payload); state != asynq.TaskStateArchived {
		t.Fatalf("expected archived task, got %s", state)
	}

	if err := client.EnqueueEntitlementReconcile(payload, 0); err != nil {
		t.Fatalf("enqueue after archive failed: %v", err)
	}
	if state := reconcileTaskState(t, inspector, payload); state != asynq.TaskStatePending {
		t.Fatalf("archived task should be replaced by a pending one, got %s", state)
	}
	archived, err := inspector.ListArchivedTasks(CriticalQueue)
	if err != nil {
		t.Fatalf("list archived failed: %v", err)
	}
	if len(archived) != 0 {
		t.Fatalf("archived task should be released, got %d", len(archived))
	}
}

func TestReleaseFinishedTaskWithoutInspector(t *testing.T) {
	client := &Client{enabled: true}
	if _, err := client.releaseFinishedTask("entitlement:reconcile:1"); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected queue disabled error, got %v", err)
	}
}
