package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务，附带优惠券已使用次数的周期校准
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	serverCfg.Logger = newAsynqLogger()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	svc := &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}
	if cfg.Coupon.ReconcileIntervalMinutes > 0 {
		svc.reconcileInterval = time.Duration(cfg.Coupon.ReconcileIntervalMinutes) * time.Minute
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.reconcileInterval > 0 && s.consumer != nil && s.consumer.CouponAdminService != nil {
		go s.runCouponReconcileLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后关闭（asynq 自身的 ShutdownTimeout 兜底）
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func (s *Service) runCouponReconcileLoop(ctx context.Context) {
	ledger := s.consumer.CouponAdminService.Ledger()
	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := ledger.ReconcileAll()
			if err != nil {
				logger.Warnw("worker_coupon_reconcile_loop_failed", "error", err)
				continue
			}
			logger.Debugw("worker_coupon_reconcile_loop_done", "processed", processed)
		}
	}
}
