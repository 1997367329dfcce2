package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/shopizen/internal/logger"
)

const (
	defaultEvictIdle     = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Registry 客户端工作区注册表，按需创建并回收空闲工作区
type Registry struct {
	deps          Deps
	evictIdle     time.Duration
	sweepInterval time.Duration

	mu    sync.Mutex
	items map[string]*Workspace
	stop  chan struct{}
	once  sync.Once
}

// NewRegistry 创建注册表
func NewRegistry(deps Deps) *Registry {
	evictIdle := defaultEvictIdle
	sweepInterval := defaultSweepInterval
	if deps.Config != nil {
		if minutes := deps.Config.Workspace.EvictIdleMinutes; minutes > 0 {
			evictIdle = time.Duration(minutes) * time.Minute
		}
		if seconds := deps.Config.Workspace.SweepIntervalSeconds; seconds > 0 {
			sweepInterval = time.Duration(seconds) * time.Second
		}
	}
	return &Registry{
		deps:          deps,
		evictIdle:     evictIdle,
		sweepInterval: sweepInterval,
		items:         make(map[string]*Workspace),
		stop:          make(chan struct{}),
	}
}

// Get 返回客户端工作区，不存在时创建
func (r *Registry) Get(clientID string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.items[clientID]; ok {
		ws.Touch(time.Now())
		return ws, nil
	}
	ws, err := New(clientID, r.deps)
	if err != nil {
		return nil, err
	}
	r.items[ws.ClientID] = ws
	logger.ForClient(ws.ClientID).Infow("workspace_created", "workspaces", len(r.items))
	return ws, nil
}

// Lookup 仅查找已加载的工作区
func (r *Registry) Lookup(clientID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[clientID]
	return ws, ok
}

// Len 已加载的工作区数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Evict 关闭并移除工作区，持久化数据保留
func (r *Registry) Evict(clientID string) bool {
	r.mu.Lock()
	ws, ok := r.items[clientID]
	delete(r.items, clientID)
	r.mu.Unlock()
	if ok {
		ws.Close()
	}
	return ok
}

// Sweep 回收空闲超时的工作区
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var idle []*Workspace
	for id, ws := range r.items {
		if now.Sub(ws.LastUsed()) >= r.evictIdle {
			idle = append(idle, ws)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()
	for _, ws := range idle {
		ws.Close()
	}
	if len(idle) > 0 {
		logger.Infow("workspace_sweep_evicted", "count", len(idle))
	}
	return len(idle)
}

// CloseAll 关闭全部工作区
func (r *Registry) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, ws := range items {
		ws.Close()
	}
}

// Name 服务名称
func (r *Registry) Name() string {
	return "workspace"
}

// Start 运行空闲回收循环，直到 ctx 结束或 Stop
func (r *Registry) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stop:
			return nil
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Stop 停止回收循环并关闭全部工作区
func (r *Registry) Stop(ctx context.Context) error {
	_ = ctx
	r.once.Do(func() { close(r.stop) })
	r.CloseAll()
	return nil
}
