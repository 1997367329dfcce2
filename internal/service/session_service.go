package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

const (
	defaultIdleMinutes   = 15
	defaultAbsoluteHours = 8
	defaultCheckInterval = 10 * time.Second
)

var activityKinds = map[string]struct{}{
	constants.ActivityMouseMove:  {},
	constants.ActivityKeyDown:    {},
	constants.ActivityTouchStart: {},
	constants.ActivityClick:      {},
}

// SessionPolicy 会话时长策略
type SessionPolicy struct {
	IdleMinutes   int
	AbsoluteHours int
}

func (p SessionPolicy) normalize(fallback SessionPolicy) SessionPolicy {
	if p.IdleMinutes <= 0 {
		p.IdleMinutes = fallback.IdleMinutes
	}
	if p.AbsoluteHours <= 0 {
		p.AbsoluteHours = fallback.AbsoluteHours
	}
	if p.IdleMinutes <= 0 {
		p.IdleMinutes = defaultIdleMinutes
	}
	if p.AbsoluteHours <= 0 {
		p.AbsoluteHours = defaultAbsoluteHours
	}
	return p
}

// SessionOptions 会话服务参数
type SessionOptions struct {
	DefaultPolicy    SessionPolicy
	CheckInterval    time.Duration // 过期轮询间隔
	ActivityCoalesce time.Duration // 活动续期合并窗口，应小于轮询间隔
	Clock            Clock
}

// SessionState 会话快照
type SessionState struct {
	Authenticated bool                `json:"authenticated"`
	Identity      *models.Identity    `json:"user,omitempty"`
	Meta          *models.SessionMeta `json:"meta,omitempty"`
}

// SessionService 单个工作区的会话状态机
// 同一时刻至多一个已登录身份，过期由后台轮询与按需检查共同判定
type SessionService struct {
	store    kvstore.Store
	notifier Notifier
	opts     SessionOptions
	clock    Clock

	mu        sync.Mutex
	identity  *models.Identity
	meta      models.SessionMeta
	lastTouch time.Time
	stopWatch context.CancelFunc

	hookMu    sync.RWMutex
	migrators []GuestDataMigrator
	listeners []IdentityListener
}

// NewSessionService 创建会话服务
func NewSessionService(store kvstore.Store, notifier Notifier, opts SessionOptions) *SessionService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	opts.DefaultPolicy = opts.DefaultPolicy.normalize(SessionPolicy{})
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}
	if opts.ActivityCoalesce < 0 || opts.ActivityCoalesce >= opts.CheckInterval {
		opts.ActivityCoalesce = 0
	}
	return &SessionService{
		store:    store,
		notifier: notifier,
		opts:     opts,
		clock:    opts.Clock,
	}
}

// AddMigrator 注册游客数据迁移器
func (s *SessionService) AddMigrator(migrators ...GuestDataMigrator) {
	s.hookMu.Lock()
	s.migrators = append(s.migrators, migrators...)
	s.hookMu.Unlock()
}

// OnIdentityChange 注册身份切换回调
func (s *SessionService) OnIdentityChange(listener IdentityListener) {
	if listener == nil {
		return
	}
	s.hookMu.Lock()
	s.listeners = append(s.listeners, listener)
	s.hookMu.Unlock()
}

// Restore 从存储恢复会话，过期或损坏的记录会被删除
func (s *SessionService) Restore() error {
	var stored models.StoredSession
	ok, err := kvstore.GetJSON(s.store, constants.SessionKey, &stored)
	if err != nil && !isCorrupt(err) {
		return err
	}
	now := s.clock.now()
	if err != nil || (ok && (!stored.Valid() || stored.Meta.Expired(now))) {
		logger.Infow("session_restore_discarded", "corrupt", err != nil)
		if removeErr := s.store.Remove(constants.SessionKey); removeErr != nil {
			logger.Warnw("session_restore_cleanup_failed", "error", removeErr)
		}
		return nil
	}
	if !ok {
		return nil
	}

	identity := *stored.User
	s.mu.Lock()
	s.identity = &identity
	s.meta = stored.Meta
	s.lastTouch = now
	s.startWatcherLocked()
	s.mu.Unlock()

	logger.Infow("session_restored", "identity_key", models.IdentityKey(&identity))
	s.emitIdentityChange(nil, &identity)
	return nil
}

// Login 建立会话：校验身份、持久化、迁移游客数据并启动过期轮询
func (s *SessionService) Login(identity models.Identity, policy SessionPolicy) error {
	if !identity.HasLoginHandle() {
		s.notifier.ShowToast(i18n.T(i18n.DefaultLocale, "toast.login_invalid"), constants.ToastError)
		logger.Warnw("session_login_rejected", "reason", "missing_login_handle")
		return ErrInvalidIdentity
	}
	identity.Email = strings.TrimSpace(identity.Email)
	identity.Mobile = strings.TrimSpace(identity.Mobile)
	identity.Username = strings.TrimSpace(identity.Username)
	if strings.TrimSpace(identity.Role) == "" {
		identity.Role = constants.RoleUser
	}

	policy = policy.normalize(s.opts.DefaultPolicy)
	now := s.clock.now()
	meta := models.SessionMeta{
		IdleExpiresAt:     now.Add(time.Duration(policy.IdleMinutes) * time.Minute).UnixMilli(),
		AbsoluteExpiresAt: now.Add(time.Duration(policy.AbsoluteHours) * time.Hour).UnixMilli(),
		IdleMinutes:       policy.IdleMinutes,
	}
	if err := kvstore.SetJSON(s.store, constants.SessionKey, models.StoredSession{User: &identity, Meta: meta}); err != nil {
		logger.Errorw("session_persist_failed", "error", err)
		return wrapStorageErr(err)
	}

	s.mu.Lock()
	previous := s.identity
	s.identity = &identity
	s.meta = meta
	s.lastTouch = now
	s.startWatcherLocked()
	s.mu.Unlock()

	key := models.IdentityKey(&identity)
	s.hookMu.RLock()
	migrators := append([]GuestDataMigrator(nil), s.migrators...)
	s.hookMu.RUnlock()
	for _, migrator := range migrators {
		if err := migrator.MigrateGuest(key); err != nil {
			logger.Warnw("session_guest_migration_failed", "identity_key", key, "error", err)
		}
	}

	s.emitIdentityChange(previous, &identity)
	s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.welcome_back", identity.DisplayName()), constants.ToastSuccess)
	logger.Infow("session_login_succeeded",
		"identity_key", key,
		"role", identity.Role,
		"idle_minutes", policy.IdleMinutes,
		"absolute_hours", policy.AbsoluteHours,
	)
	return nil
}

// Logout 结束会话；expired 仅影响提示文案
func (s *SessionService) Logout(expired bool) {
	s.endSession(expired, false)
}

// IsSessionActive 已登录且未达到任一过期点
func (s *SessionService) IsSessionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && !s.meta.Expired(s.clock.now())
}

// Current 返回当前身份；已过期的会话在此处即时登出
func (s *SessionService) Current() *models.Identity {
	s.mu.Lock()
	identity := s.identity
	expired := identity != nil && s.meta.Expired(s.clock.now())
	s.mu.Unlock()
	if identity == nil {
		return nil
	}
	if expired {
		s.endSession(true, true)
		return nil
	}
	copied := *identity
	return &copied
}

// Peek 返回当前有效身份，过期时返回 nil 但不登出
func (s *SessionService) Peek() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil || s.meta.Expired(s.clock.now()) {
		return nil
	}
	copied := *s.identity
	return &copied
}

// RequireActive 受保护操作的入口校验
func (s *SessionService) RequireActive() (*models.Identity, error) {
	identity := s.Current()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	return identity, nil
}

// State 返回会话快照
func (s *SessionService) State() SessionState {
	identity := s.Current()
	if identity == nil {
		return SessionState{}
	}
	s.mu.Lock()
	meta := s.meta
	s.mu.Unlock()
	return SessionState{Authenticated: true, Identity: identity, Meta: &meta}
}

// ExtendIdleTimeout 顺延空闲过期点，绝对过期点保持不变
func (s *SessionService) ExtendIdleTimeout(idleMinutes int) error {
	s.mu.Lock()
	now := s.clock.now()
	if s.identity == nil || s.meta.Expired(now) {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if idleMinutes <= 0 {
		idleMinutes = s.meta.IdleMinutes
	}
	if idleMinutes <= 0 {
		idleMinutes = s.opts.DefaultPolicy.IdleMinutes
	}
	meta := s.meta
	meta.IdleExpiresAt = now.Add(time.Duration(idleMinutes) * time.Minute).UnixMilli()
	identity := *s.identity
	if err := kvstore.SetJSON(s.store, constants.SessionKey, models.StoredSession{User: &identity, Meta: meta}); err != nil {
		s.mu.Unlock()
		logger.Warnw("session_extend_persist_failed", "error", err)
		return wrapStorageErr(err)
	}
	s.meta = meta
	s.lastTouch = now
	s.mu.Unlock()
	return nil
}

// RecordActivity 处理用户活动事件，合并窗口内的重复事件不再写存储
func (s *SessionService) RecordActivity(kind string) error {
	if _, ok := activityKinds[strings.ToLower(strings.TrimSpace(kind))]; !ok {
		return ErrInvalidActivity
	}
	if s.Current() == nil {
		return ErrNotAuthenticated
	}
	s.mu.Lock()
	coalesced := s.opts.ActivityCoalesce > 0 && s.clock.now().Sub(s.lastTouch) < s.opts.ActivityCoalesce
	s.mu.Unlock()
	if coalesced {
		return nil
	}
	return s.ExtendIdleTimeout(0)
}

// CheckExpiry 轮询入口：会话过期则登出
func (s *SessionService) CheckExpiry() bool {
	return s.endSession(true, true)
}

// Close 停止后台轮询，不修改持久化会话
func (s *SessionService) Close() {
	s.mu.Lock()
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	s.mu.Unlock()
}

// endSession 结束会话；onlyIfExpired 为 true 时仅在仍处于过期状态时生效
func (s *SessionService) endSession(expired, onlyIfExpired bool) bool {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return false
	}
	if onlyIfExpired && !s.meta.Expired(s.clock.now()) {
		s.mu.Unlock()
		return false
	}
	previous := s.identity
	s.identity = nil
	s.meta = models.SessionMeta{}
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	if err := s.store.Remove(constants.SessionKey); err != nil {
		logger.Warnw("session_remove_failed", "error", err)
	}
	s.mu.Unlock()

	s.emitIdentityChange(previous, nil)
	if expired {
		s.notifier.ShowToast(i18n.T(i18n.DefaultLocale, "toast.session_expired"), constants.ToastInfo)
	} else {
		s.notifier.ShowToast(i18n.T(i18n.DefaultLocale, "toast.logged_out"), constants.ToastInfo)
	}
	logger.Infow("session_logged_out", "identity_key", models.IdentityKey(previous), "expired", expired)
	return true
}

func (s *SessionService) startWatcherLocked() {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopWatch = cancel
	go s.watch(ctx, s.opts.CheckInterval)
}

func (s *SessionService) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.CheckExpiry() {
				return
			}
		}
	}
}

func (s *SessionService) emitIdentityChange(previous, next *models.Identity) {
	s.hookMu.RLock()
	listeners := append([]IdentityListener(nil), s.listeners...)
	s.hookMu.RUnlock()
	for _, listener := range listeners {
		listener(previous, next)
	}
}
