package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

const defaultAutoAdvanceInterval = 4 * time.Second

// OrderTracker 物流模拟：按固定间隔推进订单状态
// 每个跟踪绑定启动时的身份，身份切换或工作区关闭时全部停止
type OrderTracker struct {
	orders   *OrderService
	identity IdentitySource
	interval time.Duration
	clientID string

	mu       sync.Mutex
	trackers map[string]*tracking
	closed   bool

	// tickMu 串行化推进与停止：StopAll 返回后不再有推进在途
	tickMu sync.Mutex
}

// identityPeeker 无副作用地读取当前身份（不触发过期登出）
type identityPeeker interface {
	Peek() *models.Identity
}

type tracking struct {
	owner  string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewOrderTracker 创建订单跟踪器
func NewOrderTracker(orders *OrderService, identity IdentitySource, clientID string, interval time.Duration) *OrderTracker {
	if interval <= 0 {
		interval = defaultAutoAdvanceInterval
	}
	return &OrderTracker{
		orders:   orders,
		identity: identity,
		interval: interval,
		clientID: clientID,
		trackers: make(map[string]*tracking),
	}
}

// Track 为当前身份的订单启动自动推进；已在跟踪或已无需跟踪时直接返回
func (t *OrderTracker) Track(orderID string) (bool, error) {
	owner := t.currentKey()
	order, err := t.orders.GetFor(owner, orderID)
	if err != nil {
		return false, err
	}
	if trackingFinished(order) {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false, nil
	}
	if existing, ok := t.trackers[orderID]; ok {
		if existing.owner == owner {
			return true, nil
		}
		existing.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	entry := &tracking{owner: owner, cancel: cancel, done: make(chan struct{})}
	t.trackers[orderID] = entry
	go t.run(ctx, orderID, entry)
	logger.ForClient(t.clientID).Infow("order_tracking_started", "identity_key", owner, "order_id", orderID)
	return true, nil
}

// Tracking 订单是否正在跟踪
func (t *OrderTracker) Tracking(orderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.trackers[orderID]
	return ok
}

// Stop 停止单个订单跟踪
func (t *OrderTracker) Stop(orderID string) {
	t.mu.Lock()
	entry, ok := t.trackers[orderID]
	if ok {
		delete(t.trackers, orderID)
	}
	t.mu.Unlock()
	if ok {
		entry.cancel()
	}
}

// StopAll 停止所有跟踪，返回时保证没有推进仍在执行
func (t *OrderTracker) StopAll() {
	t.mu.Lock()
	entries := t.trackers
	t.trackers = make(map[string]*tracking)
	t.mu.Unlock()
	for _, entry := range entries {
		entry.cancel()
	}
	t.tickMu.Lock()
	t.tickMu.Unlock()
}

// HandleIdentityChange 身份切换回调
func (t *OrderTracker) HandleIdentityChange(previous, next *models.Identity) {
	if models.SameIdentity(previous, next) {
		return
	}
	t.StopAll()
}

// Close 关闭跟踪器并等待后台协程退出
func (t *OrderTracker) Close() {
	t.mu.Lock()
	t.closed = true
	entries := t.trackers
	t.trackers = make(map[string]*tracking)
	t.mu.Unlock()
	for _, entry := range entries {
		entry.cancel()
		<-entry.done
	}
}

func (t *OrderTracker) run(ctx context.Context, orderID string, entry *tracking) {
	defer close(entry.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			finished, err := t.tick(ctx, orderID, entry.owner)
			if err != nil || finished {
				if err != nil {
					logger.ForClient(t.clientID).Warnw("order_tracking_stopped", "order_id", orderID, "error", err)
				} else {
					logger.ForClient(t.clientID).Infow("order_tracking_finished", "order_id", orderID)
				}
				t.release(orderID, entry)
				return
			}
		}
	}
}

// tick 推进一步；已取消或身份已变化时拒绝推进
func (t *OrderTracker) tick(ctx context.Context, orderID, owner string) (bool, error) {
	t.tickMu.Lock()
	defer t.tickMu.Unlock()
	if ctx.Err() != nil {
		return true, nil
	}
	if t.peekKey() != owner {
		return true, ErrTrackerIdentity
	}
	_, finished, err := t.orders.AdvanceOrder(owner, orderID)
	return finished, err
}

func (t *OrderTracker) release(orderID string, entry *tracking) {
	t.mu.Lock()
	if current, ok := t.trackers[orderID]; ok && current == entry {
		delete(t.trackers, orderID)
	}
	t.mu.Unlock()
	entry.cancel()
}

// peekKey 在 tickMu 内使用，不能触发身份回调
func (t *OrderTracker) peekKey() string {
	if peeker, ok := t.identity.(identityPeeker); ok {
		return models.IdentityKey(peeker.Peek())
	}
	return t.currentKey()
}

func (t *OrderTracker) currentKey() string {
	if t.identity == nil {
		return models.IdentityKey(nil)
	}
	return models.IdentityKey(t.identity.Current())
}
