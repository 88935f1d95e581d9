package service

import (
	"fmt"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// CouponLedger 优惠券使用记录账本
// 每个 (coupon, user) 至多一条记录，由数据库唯一索引保证。
type CouponLedger struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponLedger 创建优惠券账本
func NewCouponLedger(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponLedger {
	return &CouponLedger{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// HasUsed 查询用户是否已使用过该券
func (l *CouponLedger) HasUsed(couponID, userID uint) (bool, *models.CouponUsage, error) {
	if couponID == 0 || userID == 0 {
		return false, nil, nil
	}
	usage, err := l.usageRepo.GetByCouponAndUser(couponID, userID)
	if err != nil {
		return false, nil, err
	}
	return usage != nil, usage, nil
}

// Redemptions 统计该券的核销次数
func (l *CouponLedger) Redemptions(couponID uint) (int64, error) {
	return l.usageRepo.CountByCoupon(couponID)
}

// RecordUsage 写入使用记录并在同一事务内占用总量
// tx 为空时自行开启事务；唯一冲突返回 ErrCouponAlreadyUsed，总量耗尽返回 ErrCouponLimitReached。
func (l *CouponLedger) RecordUsage(tx *gorm.DB, couponID, userID uint, orderID *uint, usedAt time.Time) (*models.CouponUsage, error) {
	if couponID == 0 || userID == 0 {
		return nil, ErrInvalidInput
	}
	if usedAt.IsZero() {
		usedAt = time.Now()
	}
	usage := &models.CouponUsage{
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
		UsedAt:   usedAt,
	}
	record := func(tx *gorm.DB) error {
		if err := l.usageRepo.WithTx(tx).Create(usage); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrCouponAlreadyUsed
			}
			return fmt.Errorf("create coupon usage: %w", err)
		}
		ok, err := l.couponRepo.WithTx(tx).IncrementUsedCount(couponID)
		if err != nil {
			return fmt.Errorf("increment coupon used count: %w", err)
		}
		if !ok {
			return ErrCouponLimitReached
		}
		return nil
	}

	var err error
	if tx != nil {
		err = record(tx)
	} else {
		err = l.couponRepo.Transaction(record)
	}
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// ReconcileUsedCount 按使用记录校准单张券的已使用次数
func (l *CouponLedger) ReconcileUsedCount(couponID uint) (int64, error) {
	count, err := l.usageRepo.CountByCoupon(couponID)
	if err != nil {
		return 0, err
	}
	if err := l.couponRepo.SetUsedCount(couponID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReconcileAll 校准全部优惠券，返回处理数量
func (l *CouponLedger) ReconcileAll() (int, error) {
	ids, err := l.couponRepo.ListIDs()
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, id := range ids {
		if _, err := l.ReconcileUsedCount(id); err != nil {
			logger.Warnw("coupon_reconcile_used_count_failed", "coupon_id", id, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}
