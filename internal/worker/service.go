package worker

import (
	"context"
	"errors"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 个人通知投递消费服务
type Service struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	concurrency int
	queues      map[string]int
}

// NewService 创建消费服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.S()
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:      asynq.NewServer(opt, serverCfg),
		mux:         mux,
		concurrency: serverCfg.Concurrency,
		queues:      serverCfg.Queues,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费，阻塞直到 ctx 结束；信号由 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_start", "concurrency", s.concurrency, "queues", s.queues)
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后停止
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
