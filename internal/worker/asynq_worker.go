package worker

import (
	"context"
	"strings"
	"time"

	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/provider"
	"github.com/shopizen/internal/queue"
	"github.com/shopizen/internal/service"

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
	mux.HandleFunc(queue.TaskNotificationDeliver, c.handleNotificationDeliver)
}

func (c *Consumer) handleNotificationDeliver(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseNotificationPayload(task)
	if err != nil {
		logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.ClientID) == "" || strings.TrimSpace(payload.IdentityKey) == "" {
		logger.Debugw("worker_notification_skip_invalid_payload", "client_id", payload.ClientID, "order_id", payload.OrderID)
		return nil
	}
	notifier := c.notificationTarget(payload.ClientID)
	if notifier == nil {
		logger.Warnw("worker_notification_store_unavailable", "client_id", payload.ClientID)
		return nil
	}
	at := time.Now()
	if payload.CreatedAt > 0 {
		at = time.UnixMilli(payload.CreatedAt)
	}
	if err := notifier.Record(payload.IdentityKey, payload.OrderID, payload.Message, payload.Kind, at); err != nil {
		logger.Warnw("worker_notification_record_failed", "client_id", payload.ClientID, "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Debugw("worker_notification_delivered", "client_id", payload.ClientID, "order_id", payload.OrderID)
	return nil
}

// notificationTarget 优先复用已加载工作区的通知服务，避免与其并发写同一键
func (c *Consumer) notificationTarget(clientID string) *service.NotificationService {
	if c.Workspaces != nil {
		if ws, ok := c.Workspaces.Lookup(clientID); ok {
			return ws.Notifications
		}
	}
	if c.Store == nil {
		return nil
	}
	return service.NewNotificationService(kvstore.Namespace(c.Store, clientID), clientID, nil, nil)
}
