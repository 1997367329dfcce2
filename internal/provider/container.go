package provider

import (
	"context"
	"time"

	"github.com/shopizen/internal/authz"
	"github.com/shopizen/internal/cache"
	"github.com/shopizen/internal/catalog"
	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/queue"
	"github.com/shopizen/internal/service"
	"github.com/shopizen/internal/workspace"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Storage
	Store   kvstore.Store
	Catalog catalog.Provider

	// Services
	AuthzService       *authz.Service
	AccountService     *service.AccountService
	CaptchaService     *service.CaptchaService
	ClientTokenService *service.ClientTokenService
	Workspaces         *workspace.Registry
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	} else if cache.Enabled() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logger.Warnw("provider_ping_redis_failed", "error", err)
		}
		cancel()
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化存储
	c.initStorage()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initStorage() {
	store, err := kvstore.Open(c.Config.Storage, models.DB)
	if err != nil {
		logger.Errorw("provider_init_store_failed", "backend", c.Config.Storage.Backend, "error", err)
		panic(err)
	}
	c.Store = store

	products, err := catalog.Load(c.Config.Catalog.FixturePath)
	if err != nil {
		logger.Errorw("provider_load_catalog_failed", "path", c.Config.Catalog.FixturePath, "error", err)
		panic(err)
	}
	c.Catalog = products
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AccountService = service.NewAccountService(c.Store, service.AccountOptions{
		PasswordPolicy: c.Config.Security.PasswordPolicy,
		EmailPolicy: service.SessionPolicy{
			IdleMinutes:   c.Config.Session.EmailIdleMinutes,
			AbsoluteHours: c.Config.Session.AbsoluteHours,
		},
		MobilePolicy: service.SessionPolicy{
			IdleMinutes:   c.Config.Session.IdleMinutes,
			AbsoluteHours: c.Config.Session.AbsoluteHours,
		},
	})
	if err := c.AccountService.EnsureDefaultAdmin(c.Config.Admin); err != nil {
		logger.Warnw("provider_init_default_admin_failed", "error", err)
	}
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ClientTokenService = service.NewClientTokenService(c.Config.ClientToken, nil)

	var publisher service.NotificationPublisher
	if c.QueueClient != nil {
		publisher = c.QueueClient
	}
	c.Workspaces = workspace.NewRegistry(workspace.Deps{
		Base:      c.Store,
		Config:    c.Config,
		Publisher: publisher,
	})
}

// Close 释放队列客户端与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
