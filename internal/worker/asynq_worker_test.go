package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupReconcileConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_reconcile_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	container := &provider.Container{
		CouponAdminService: service.NewCouponAdminService(couponRepo, usageRepo, nil),
	}
	return NewConsumer(container), db
}

func TestHandleCouponReconcileUsage(t *testing.T) {
	consumer, db := setupReconcileConsumer(t)

	coupon := models.Coupon{
		Code:      "DRIFT",
		Type:      constants.CouponTypeFlat,
		Discount:  models.MustMoney("5"),
		UsedCount: 9,
		IsActive:  true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	for _, userID := range []uint{1, 2} {
		usage := models.CouponUsage{CouponID: coupon.ID, UserID: userID, UsedAt: time.Now()}
		if err := db.Create(&usage).Error; err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	body, _ := json.Marshal(queue.CouponReconcileUsagePayload{CouponID: coupon.ID})
	if err := consumer.handleCouponReconcileUsage(context.Background(), asynq.NewTask(queue.TaskCouponReconcileUsage, body)); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 2 {
		t.Fatalf("used_count want 2 got %d", reloaded.UsedCount)
	}

	if err := consumer.handleCouponReconcileUsage(context.Background(), asynq.NewTask(queue.TaskCouponReconcileUsage, []byte("{"))); err == nil {
		t.Fatalf("malformed payload should return error")
	}
}

func TestHandleOrderTimeoutCancelSkips(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	body, _ := json.Marshal(queue.OrderTimeoutCancelPayload{OrderID: 0})
	if err := consumer.handleOrderTimeoutCancel(context.Background(), asynq.NewTask(queue.TaskOrderTimeoutCancel, body)); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
	body, _ = json.Marshal(queue.OrderTimeoutCancelPayload{OrderID: 3})
	if err := consumer.handleOrderTimeoutCancel(context.Background(), asynq.NewTask(queue.TaskOrderTimeoutCancel, body)); err != nil {
		t.Fatalf("missing order service should be skipped, got %v", err)
	}
}
