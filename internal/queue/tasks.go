package queue

import (
	"encoding/json"

	"github.com/aipath-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskEntitlementReconcile 权益对账重试任务
	TaskEntitlementReconcile = constants.TaskEntitlementReconcile
)

// EntitlementReconcilePayload 权益对账重试任务载荷，指向回调事件台账记录
type EntitlementReconcilePayload struct {
	PaymentEventID uint   `json:"payment_event_id"`
	EventID        string `json:"event_id"`
}

// NewEntitlementReconcileTask 创建权益对账重试任务
func NewEntitlementReconcileTask(payload EntitlementReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEntitlementReconcile, body), nil
}

// ParseEntitlementReconcilePayload 解析权益对账重试任务载荷
func ParseEntitlementReconcilePayload(body []byte) (EntitlementReconcilePayload, error) {
	var payload EntitlementReconcilePayload
	err := json.Unmarshal(body, &payload)
	return payload, err
}
