package service

import (
	"strings"
	"sync"
	"time"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/queue"

	"github.com/hibiken/asynq"
)

const toastBufferSize = 50

// NotificationPublisher 个人通知异步投递出口
type NotificationPublisher interface {
	Enabled() bool
	EnqueueNotification(payload queue.NotificationPayload, opts ...asynq.Option) error
}

// NotificationService 即时提示缓冲与个人通知列表
type NotificationService struct {
	store     kvstore.Store
	clientID  string
	publisher NotificationPublisher
	clock     Clock

	toastMu sync.Mutex
	toasts  []models.Toast

	mu     sync.Mutex
	lastID int64
}

// NewNotificationService 创建通知服务，publisher 为空时同步写入
func NewNotificationService(store kvstore.Store, clientID string, publisher NotificationPublisher, clock Clock) *NotificationService {
	return &NotificationService{
		store:     store,
		clientID:  clientID,
		publisher: publisher,
		clock:     clock,
	}
}

// ShowToast 记录一条即时提示，等待下一次响应取走
func (s *NotificationService) ShowToast(message, kind string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	kind = normalizeToastKind(kind)
	logger.ForClient(s.clientID).Debugw("toast_emitted", "kind", kind, "message", message)

	s.toastMu.Lock()
	s.toasts = append(s.toasts, models.Toast{Message: message, Kind: kind})
	if overflow := len(s.toasts) - toastBufferSize; overflow > 0 {
		s.toasts = append([]models.Toast(nil), s.toasts[overflow:]...)
	}
	s.toastMu.Unlock()
}

// DrainToasts 取走并清空缓冲的提示
func (s *NotificationService) DrainToasts() []models.Toast {
	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	drained := s.toasts
	s.toasts = nil
	if drained == nil {
		return []models.Toast{}
	}
	return drained
}

// NotifyOrder 为已登录身份投递订单通知；队列不可用时同步写入
func (s *NotificationService) NotifyOrder(identityKey, orderID, message, kind string) {
	identityKey = strings.TrimSpace(identityKey)
	if identityKey == "" || identityKey == constants.GuestIdentityKey {
		return
	}
	now := s.clock.now()
	if s.publisher != nil && s.publisher.Enabled() {
		err := s.publisher.EnqueueNotification(queue.NotificationPayload{
			ClientID:    s.clientID,
			IdentityKey: identityKey,
			OrderID:     orderID,
			Message:     message,
			Kind:        kind,
			CreatedAt:   now.UnixMilli(),
		})
		if err == nil {
			return
		}
		logger.ForClient(s.clientID).Warnw("notification_enqueue_failed", "order_id", orderID, "error", err)
	}
	if err := s.Record(identityKey, orderID, message, kind, now); err != nil {
		logger.ForClient(s.clientID).Errorw("notification_record_failed", "order_id", orderID, "error", err)
	}
}

// Record 写入个人通知；同一订单只保留一条，新消息覆盖旧消息并置顶为未读
func (s *NotificationService) Record(identityKey, orderID, message, kind string, at time.Time) error {
	if at.IsZero() {
		at = s.clock.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := constants.NotificationKeyPrefix + identityKey
	items, err := loadList[models.Notification](s.store, key, "notification_snapshot_decode_failed")
	if err != nil {
		return err
	}
	entry := models.Notification{
		ID:        s.nextIDLocked(at, items),
		OrderID:   orderID,
		Message:   message,
		Kind:      normalizeToastKind(kind),
		Timestamp: at,
	}
	next := make([]models.Notification, 0, len(items)+1)
	next = append(next, entry)
	for _, item := range items {
		if orderID != "" && item.OrderID == orderID {
			continue
		}
		next = append(next, item)
	}
	return saveList(s.store, key, next)
}

// List 返回个人通知（最新在前）
func (s *NotificationService) List(identityKey string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.Notification](s.store, constants.NotificationKeyPrefix+identityKey, "notification_snapshot_decode_failed")
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(identityKey string) (int, error) {
	items, err := s.List(identityKey)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		if !item.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead 标记单条已读
func (s *NotificationService) MarkRead(identityKey string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := constants.NotificationKeyPrefix + identityKey
	items, err := loadList[models.Notification](s.store, key, "notification_snapshot_decode_failed")
	if err != nil {
		return err
	}
	found := false
	for idx := range items {
		if items[idx].ID == id {
			items[idx].IsRead = true
			found = true
		}
	}
	if !found {
		return ErrNotificationNotFound
	}
	return saveList(s.store, key, items)
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(identityKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := constants.NotificationKeyPrefix + identityKey
	items, err := loadList[models.Notification](s.store, key, "notification_snapshot_decode_failed")
	if err != nil {
		return err
	}
	for idx := range items {
		items[idx].IsRead = true
	}
	return saveList(s.store, key, items)
}

// nextIDLocked 以毫秒时间戳为ID，同毫秒内递增保证唯一
func (s *NotificationService) nextIDLocked(at time.Time, existing []models.Notification) int64 {
	id := at.UnixMilli()
	floor := s.lastID
	for _, item := range existing {
		if item.ID > floor {
			floor = item.ID
		}
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return id
}

func normalizeToastKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case constants.ToastSuccess:
		return constants.ToastSuccess
	case constants.ToastError:
		return constants.ToastError
	case constants.ToastWarning:
		return constants.ToastWarning
	default:
		return constants.ToastInfo
	}
}
