package worker

import (
	"context"
	"errors"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskCouponReconcileUsage, c.handleCouponReconcileUsage)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	payload, err := queue.DecodePayload[queue.OrderTimeoutCancelPayload](task)
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderService.CancelExpiredOrder(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Debugw("worker_order_timeout_cancel_done", "order_id", order.ID, "status", order.Status)
	return nil
}

func (c *Consumer) handleCouponReconcileUsage(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	payload, err := queue.DecodePayload[queue.CouponReconcileUsagePayload](task)
	if err != nil {
		logger.Warnw("worker_coupon_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if c.CouponAdminService == nil {
		logger.Warnw("worker_coupon_reconcile_skip_service_nil", "coupon_id", payload.CouponID)
		return nil
	}
	ledger := c.CouponAdminService.Ledger()
	if payload.CouponID == 0 {
		processed, err := ledger.ReconcileAll()
		if err != nil {
			logger.Warnw("worker_coupon_reconcile_all_failed", "error", err)
			return err
		}
		logger.Infow("worker_coupon_reconcile_all_done", "processed", processed)
		return nil
	}
	count, err := ledger.ReconcileUsedCount(payload.CouponID)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			logger.Debugw("worker_coupon_reconcile_skip_not_found", "coupon_id", payload.CouponID)
			return nil
		}
		logger.Warnw("worker_coupon_reconcile_failed", "coupon_id", payload.CouponID, "error", err)
		return err
	}
	logger.Infow("worker_coupon_reconcile_done", "coupon_id", payload.CouponID, "used_count", count)
	return nil
}
