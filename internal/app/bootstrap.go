package app

import (
	"errors"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/provider"
	"github.com/shopizen/internal/router"
	"github.com/shopizen/internal/worker"
)

// BuildRunner 构建服务运行器
// 注册顺序为 工作区回收 -> 队列消费 -> HTTP，停止时逆序
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	closeOnError := true
	defer func() {
		if closeOnError {
			container.Close()
		}
	}()
	serveHTTP := mode == ModeAll || mode == ModeAPI

	var services []Service
	if serveHTTP {
		services = append(services, container.Workspaces)
	}

	// all 模式下队列未启用时跳过消费者
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if serveHTTP {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	closeOnError = false
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	if _, err := ParseMode(opts.Mode); err != nil {
		return err
	}
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
