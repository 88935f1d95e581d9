package service

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// CouponContext 优惠券校验上下文
// 未提供的列表或金额视为“无上下文”，对应检查直接跳过。
type CouponContext struct {
	UserID      uint
	ProductIDs  []uint
	CategoryIDs []uint
	TotalAmount *decimal.Decimal
}

// EvaluateCouponEligibility 按固定顺序校验优惠券，返回第一个失败原因
// redemptions 为使用记录表中该券的核销次数。
func EvaluateCouponEligibility(coupon *models.Coupon, redemptions int64, ctx CouponContext, now time.Time) error {
	if coupon == nil {
		return ErrCouponNotFound
	}
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return ErrCouponExpired
	}
	if coupon.UsageLimit > 0 && redemptions >= int64(coupon.UsageLimit) {
		return ErrCouponLimitReached
	}
	if len(coupon.EligibleUsers) > 0 && !containsID(coupon.EligibleUsers, ctx.UserID) {
		return ErrCouponNotEligible
	}
	if len(coupon.ApplicableProducts) > 0 && len(ctx.ProductIDs) > 0 && !intersects(coupon.ApplicableProducts, ctx.ProductIDs) {
		return ErrCouponProductMismatch
	}
	if len(coupon.ApplicableCategories) > 0 && len(ctx.CategoryIDs) > 0 && !intersects(coupon.ApplicableCategories, ctx.CategoryIDs) {
		return ErrCouponCategoryMismatch
	}
	if coupon.MinPurchase.Decimal.GreaterThan(decimal.Zero) && ctx.TotalAmount != nil && ctx.TotalAmount.LessThan(coupon.MinPurchase.Decimal) {
		return ErrCouponBelowMinimum
	}
	return nil
}

// EvaluateCouponForProduct 购物车单行校验：以商品单价作为金额，商品及其分类作为适用范围
func EvaluateCouponForProduct(coupon *models.Coupon, redemptions int64, userID uint, product *models.Product, now time.Time) error {
	if product == nil {
		return ErrProductNotFound
	}
	return EvaluateCouponEligibility(coupon, redemptions, productContext(userID, product), now)
}

// CouponRejectReason 将优惠券错误映射为前端可识别的原因键
func CouponRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return constants.CouponRejectNotFound
	case errors.Is(err, ErrCouponInactive):
		return constants.CouponRejectInactive
	case errors.Is(err, ErrCouponExpired):
		return constants.CouponRejectExpired
	case errors.Is(err, ErrCouponLimitReached):
		return constants.CouponRejectLimitReached
	case errors.Is(err, ErrCouponNotEligible):
		return constants.CouponRejectNotEligible
	case errors.Is(err, ErrCouponProductMismatch):
		return constants.CouponRejectProductMismatch
	case errors.Is(err, ErrCouponCategoryMismatch):
		return constants.CouponRejectCategoryMismatch
	case errors.Is(err, ErrCouponBelowMinimum):
		return constants.CouponRejectBelowMinimum
	case errors.Is(err, ErrCouponAlreadyUsed):
		return constants.CouponRejectAlreadyUsed
	default:
		return ""
	}
}

// IsCouponRejection 是否为用户可见的优惠券业务错误
func IsCouponRejection(err error) bool {
	return CouponRejectReason(err) != ""
}

func containsID(ids []uint, target uint) bool {
	if target == 0 {
		return false
	}
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func intersects(allowed []uint, candidates []uint) bool {
	set := make(map[uint]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	for _, id := range candidates {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
