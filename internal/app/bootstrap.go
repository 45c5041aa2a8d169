package app

import (
	"errors"
	"net"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/provider"
	"github.com/ICMM2025/icmm-server/internal/router"
	"github.com/ICMM2025/icmm-server/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner 按模式组装需要运行的服务，返回的清理函数释放容器资源
func BuildRunner(cfg *config.Config, db *gorm.DB, mode string) (*Runner, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, nil, errors.New("database is nil")
	}
	if !isValidMode(mode) {
		return nil, nil, errors.New("unknown mode: " + mode)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		return nil, nil, err
	}
	cleanup := container.Close

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	// 初始化 Worker 服务；all 模式下队列未启用时只运行 HTTP
	if mode == ModeAll || mode == ModeWorker {
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			cleanup()
			return nil, nil, errors.New("worker mode requires queue.enabled")
		}
	}

	if len(services) == 0 {
		cleanup()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), cleanup, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	db := opts.DB
	if db == nil {
		db = models.DB
	}

	runner, cleanup, err := BuildRunner(opts.Config, db, opts.Mode)
	if err != nil {
		return err
	}
	defer cleanup()

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

func isValidMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	}
	return false
}
