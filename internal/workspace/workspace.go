package workspace

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"
)

// ErrClientIDRequired 客户端ID为空
var ErrClientIDRequired = errors.New("client id is required")

// Deps 构建工作区所需的共享依赖
type Deps struct {
	Base      kvstore.Store
	Config    *config.Config
	Publisher service.NotificationPublisher
	Clock     service.Clock
}

// Workspace 单个客户端的状态集合，对应一个浏览器来源
type Workspace struct {
	ClientID string
	Store    *kvstore.NamespacedStore

	Notifications *service.NotificationService
	Session       *service.SessionService
	Cart          *service.CartService
	Wishlist      *service.WishlistService
	Comparison    *service.ComparisonService
	Orders        *service.OrderService
	Tracker       *service.OrderTracker
	Search        *service.SearchHistoryService
	Address       *service.AddressService

	lastUsed  atomic.Int64
	closeOnce sync.Once
}

// New 创建工作区并恢复持久化会话
func New(clientID string, deps Deps) (*Workspace, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrClientIDRequired
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	store := kvstore.Namespace(deps.Base, clientID)

	notifications := service.NewNotificationService(store, clientID, deps.Publisher, deps.Clock)
	session := service.NewSessionService(store, notifications, service.SessionOptions{
		DefaultPolicy: service.SessionPolicy{
			IdleMinutes:   cfg.Session.IdleMinutes,
			AbsoluteHours: cfg.Session.AbsoluteHours,
		},
		CheckInterval:    time.Duration(cfg.Session.CheckIntervalSeconds) * time.Second,
		ActivityCoalesce: time.Duration(cfg.Session.ActivityCoalesceMillis) * time.Millisecond,
		Clock:            deps.Clock,
	})
	cart := service.NewCartService(store, session, notifications)
	wishlist := service.NewWishlistService(store, session, notifications)
	address := service.NewAddressService(store, session)
	orders := service.NewOrderService(store, session, cart, address, notifications, service.OrderOptions{
		ClientID:     clientID,
		DeliveryDays: cfg.Order.DeliveryDays,
		Clock:        deps.Clock,
	})
	tracker := service.NewOrderTracker(orders, session, clientID, time.Duration(cfg.Order.AutoAdvanceSeconds)*time.Second)

	ws := &Workspace{
		ClientID:      clientID,
		Store:         store,
		Notifications: notifications,
		Session:       session,
		Cart:          cart,
		Wishlist:      wishlist,
		Comparison:    service.NewComparisonService(store, notifications, cfg.Comparison.MaxItems),
		Orders:        orders,
		Tracker:       tracker,
		Search:        service.NewSearchHistoryService(store, cfg.SearchHistory.MaxItems),
		Address:       address,
	}
	session.AddMigrator(cart, wishlist)
	session.OnIdentityChange(func(previous, next *models.Identity) {
		if models.SameIdentity(previous, next) {
			return
		}
		tracker.HandleIdentityChange(previous, next)
		orders.ResetConfirmation()
	})
	if err := session.Restore(); err != nil {
		logger.ForClient(clientID).Warnw("workspace_session_restore_failed", "error", err)
	}
	ws.Touch(time.Now())
	return ws, nil
}

// Touch 记录最近一次访问时间
func (w *Workspace) Touch(now time.Time) {
	w.lastUsed.Store(now.UnixMilli())
}

// LastUsed 最近一次访问时间
func (w *Workspace) LastUsed() time.Time {
	return time.UnixMilli(w.lastUsed.Load())
}

// Identity 当前身份，游客返回 nil
func (w *Workspace) Identity() *models.Identity {
	return w.Session.Current()
}

// IdentityKey 当前身份的存储键
func (w *Workspace) IdentityKey() string {
	return models.IdentityKey(w.Session.Current())
}

// Close 停止所有后台计时器，持久化数据保持不变
func (w *Workspace) Close() {
	w.closeOnce.Do(func() {
		w.Tracker.Close()
		w.Session.Close()
		logger.ForClient(w.ClientID).Debugw("workspace_closed")
	})
}
