package service

import (
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPendingPayment: {
		constants.OrderStatusPaid:     true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusCompleted: true,
	},
}

// IsValidOrderStatus 是否为已知订单状态
func IsValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPendingPayment,
		constants.OrderStatusPaid,
		constants.OrderStatusCompleted,
		constants.OrderStatusCanceled:
		return true
	default:
		return false
	}
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// statusTimestampUpdates 状态流转时需要同步写入的时间字段
func statusTimestampUpdates(target string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": now}
	switch target {
	case constants.OrderStatusPaid:
		updates["paid_at"] = now
	case constants.OrderStatusCompleted:
		updates["completed_at"] = now
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = now
	}
	return updates
}

func applyStatusTimestamps(order *models.Order, target string, now time.Time) {
	order.Status = target
	order.UpdatedAt = now
	switch target {
	case constants.OrderStatusPaid:
		order.PaidAt = &now
	case constants.OrderStatusCompleted:
		order.CompletedAt = &now
	case constants.OrderStatusCanceled:
		order.CanceledAt = &now
	}
}
