package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo        repository.CouponRepository
	usageRepo   repository.CouponUsageRepository
	ledger      *CouponLedger
	queueClient *queue.Client
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, usageRepo repository.CouponUsageRepository, queueClient *queue.Client) *CouponAdminService {
	return &CouponAdminService{
		repo:        repo,
		usageRepo:   usageRepo,
		ledger:      NewCouponLedger(repo, usageRepo),
		queueClient: queueClient,
	}
}

// CouponInput 创建/更新优惠券输入
type CouponInput struct {
	Code                 string
	Type                 string
	Discount             models.Money
	MinPurchase          models.Money
	MaxDiscount          models.Money
	ExpiresAt            *time.Time
	UsageLimit           int
	ApplicableProducts   []uint
	ApplicableCategories []uint
	EligibleUsers        []uint
	IsActive             *bool
	Description          string
}

// normalizeCouponInput 校验并归一化输入，返回大写优惠码与类型
func normalizeCouponInput(input CouponInput) (string, string, error) {
	code := NormalizeCouponCode(input.Code)
	if code == "" || len(code) > 64 {
		return "", "", ErrCouponInvalid
	}
	couponType := strings.ToUpper(strings.TrimSpace(input.Type))
	if couponType != constants.CouponTypePercentage && couponType != constants.CouponTypeFlat {
		return "", "", ErrCouponInvalid
	}
	if input.Discount.Decimal.LessThanOrEqual(decimal.Zero) {
		return "", "", ErrCouponInvalid
	}
	if couponType == constants.CouponTypePercentage && input.Discount.Decimal.GreaterThan(hundred) {
		return "", "", ErrCouponPercentInvalid
	}
	if input.MinPurchase.Decimal.IsNegative() || input.MaxDiscount.Decimal.IsNegative() || input.UsageLimit < 0 {
		return "", "", ErrCouponInvalid
	}
	return code, couponType, nil
}

func compactIDs(ids []uint) datatypes.JSONSlice[uint] {
	if len(ids) == 0 {
		return datatypes.JSONSlice[uint]{}
	}
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return datatypes.NewJSONSlice(result)
}

func (s *CouponAdminService) ensureCodeAvailable(code string, excludeID uint) error {
	existing, err := s.repo.GetByCode(code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrCouponDuplicateCode
	}
	return nil
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CouponInput) (*models.Coupon, error) {
	code, couponType, err := normalizeCouponInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(code, 0); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	coupon := &models.Coupon{
		Code:                 code,
		Type:                 couponType,
		Discount:             input.Discount,
		MinPurchase:          input.MinPurchase,
		MaxDiscount:          input.MaxDiscount,
		ExpiresAt:            input.ExpiresAt,
		UsageLimit:           input.UsageLimit,
		ApplicableProducts:   compactIDs(input.ApplicableProducts),
		ApplicableCategories: compactIDs(input.ApplicableCategories),
		EligibleUsers:        compactIDs(input.EligibleUsers),
		IsActive:             isActive,
		Description:          strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponDuplicateCode
		}
		return nil, err
	}
	return coupon, nil
}

// Update 更新优惠券（改名时校验唯一）
func (s *CouponAdminService) Update(id uint, input CouponInput) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}
	code, couponType, err := normalizeCouponInput(input)
	if err != nil {
		return nil, err
	}
	if code != existing.Code {
		if err := s.ensureCodeAvailable(code, existing.ID); err != nil {
			return nil, err
		}
	}

	existing.Code = code
	existing.Type = couponType
	existing.Discount = input.Discount
	existing.MinPurchase = input.MinPurchase
	existing.MaxDiscount = input.MaxDiscount
	existing.ExpiresAt = input.ExpiresAt
	existing.UsageLimit = input.UsageLimit
	existing.ApplicableProducts = compactIDs(input.ApplicableProducts)
	existing.ApplicableCategories = compactIDs(input.ApplicableCategories)
	existing.EligibleUsers = compactIDs(input.EligibleUsers)
	existing.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.repo.Update(existing); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponDuplicateCode
		}
		return nil, err
	}
	return existing, nil
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Delete 删除优惠券及其使用记录
func (s *CouponAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrCouponInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCouponNotFound
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		if _, err := s.usageRepo.WithTx(tx).DeleteByCoupon(id); err != nil {
			return fmt.Errorf("delete coupon usages: %w", err)
		}
		return s.repo.WithTx(tx).Delete(id)
	})
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	if filter.Expired != nil && filter.Now.IsZero() {
		filter.Now = time.Now()
	}
	return s.repo.List(filter)
}

// ListUsages 获取优惠券使用记录
func (s *CouponAdminService) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	if filter.CouponID != 0 {
		if _, err := s.Get(filter.CouponID); err != nil {
			return nil, 0, err
		}
	}
	return s.usageRepo.List(filter)
}

// PurgeUsages 批量清理某张券的使用记录并重置已使用次数
func (s *CouponAdminService) PurgeUsages(couponID uint) (int64, error) {
	if _, err := s.Get(couponID); err != nil {
		return 0, err
	}
	var deleted int64
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		count, err := s.usageRepo.WithTx(tx).DeleteByCoupon(couponID)
		if err != nil {
			return err
		}
		deleted = count
		return s.repo.WithTx(tx).SetUsedCount(couponID, 0)
	})
	if err != nil {
		return 0, err
	}
	logger.Infow("coupon_usages_purged", "coupon_id", couponID, "deleted", deleted)
	return deleted, nil
}

// ReconcileResult 校准结果
type ReconcileResult struct {
	Queued    bool  `json:"queued"`
	Processed int   `json:"processed"`
	UsedCount int64 `json:"used_count"`
}

// Reconcile 校准已使用次数：队列可用时异步执行，否则同步执行
func (s *CouponAdminService) Reconcile(couponID uint) (*ReconcileResult, error) {
	if couponID != 0 {
		if _, err := s.Get(couponID); err != nil {
			return nil, err
		}
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueCouponReconcileUsage(queue.CouponReconcileUsagePayload{CouponID: couponID}); err != nil {
			logger.Warnw("coupon_reconcile_enqueue_failed", "coupon_id", couponID, "error", err)
		} else {
			return &ReconcileResult{Queued: true}, nil
		}
	}
	if couponID != 0 {
		count, err := s.ledger.ReconcileUsedCount(couponID)
		if err != nil {
			return nil, err
		}
		return &ReconcileResult{Processed: 1, UsedCount: count}, nil
	}
	processed, err := s.ledger.ReconcileAll()
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Processed: processed}, nil
}

// Ledger 返回使用记录账本（供 worker 复用）
func (s *CouponAdminService) Ledger() *CouponLedger {
	return s.ledger
}
