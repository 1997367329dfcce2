package queue

import (
	"encoding/json"

	"github.com/shopizen/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDeliver 个人通知投递任务
	TaskNotificationDeliver = constants.TaskNotificationDeliver
)

// NotificationPayload 个人通知任务载荷
type NotificationPayload struct {
	ClientID    string `json:"client_id"`
	IdentityKey string `json:"identity_key"`
	OrderID     string `json:"order_id"`
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	CreatedAt   int64  `json:"created_at"` // 毫秒时间戳，投递延迟时保留原始时间
}

// NewNotificationTask 创建个人通知投递任务
func NewNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, body), nil
}

// ParseNotificationPayload 解析任务载荷
func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var payload NotificationPayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
