package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	missingQRScanInterval = 10 * time.Minute
	missingQRGrace        = 5 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   asynq.NewServer(opt, serverCfg),
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动消费并巡检缺少二维码的订单，ctx 取消后返回
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.consumer != nil && s.consumer.audit != nil {
		go s.runMissingQRScan(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务，等待进行中的任务结束
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

// runMissingQRScan 二维码上传失败的订单不会自动补偿，这里只负责发现并告警
func (s *Service) runMissingQRScan(ctx context.Context) {
	ticker := time.NewTicker(missingQRScanInterval)
	defer ticker.Stop()
	for {
		s.consumer.reportMissingQR()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
