package queue

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskOrderTimeoutCancel   = constants.TaskOrderTimeoutCancel
	TaskCouponReconcileUsage = constants.TaskCouponReconcileUsage
)

// OrderTimeoutCancelPayload 待支付订单到期取消
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// CouponReconcileUsagePayload 按核销记录重算 used_count，CouponID 为 0 时处理全部
type CouponReconcileUsagePayload struct {
	CouponID uint `json:"coupon_id"`
}

func newTask(typeName string, payload interface{}, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", typeName, err)
	}
	return asynq.NewTask(typeName, body, opts...), nil
}

// DecodePayload 解析任务载荷；格式错误的任务重试也无法成功，包装 SkipRetry
func DecodePayload[T any](task *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}
