package service

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CouponDiscount 优惠计算结果
type CouponDiscount struct {
	DiscountAmount models.Money
	FinalAmount    models.Money
}

// ComputeCouponDiscount 计算优惠金额：先按类型得出原始折扣，再封顶，最后扣减并保底为 0
// 固定金额券不按基数缩放，折扣可以超过基数。
func ComputeCouponDiscount(coupon *models.Coupon, base decimal.Decimal) CouponDiscount {
	discount := decimal.Zero
	if coupon != nil {
		switch strings.ToUpper(strings.TrimSpace(coupon.Type)) {
		case constants.CouponTypePercentage:
			discount = base.Mul(coupon.Discount.Decimal).Div(hundred)
			if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
				discount = coupon.MaxDiscount.Decimal
			}
		case constants.CouponTypeFlat:
			discount = coupon.Discount.Decimal
		}
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	// 先把折扣舍入到分再扣减，保证 final = base - discount
	amount := models.MoneyOf(discount)
	final := base.Sub(amount.Decimal)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return CouponDiscount{
		DiscountAmount: amount,
		FinalAmount:    models.MoneyOf(final),
	}
}

// EffectiveDiscount 实际可抵扣金额（不超过基数）
func (d CouponDiscount) EffectiveDiscount(base decimal.Decimal) decimal.Decimal {
	if d.DiscountAmount.Decimal.GreaterThan(base) {
		return base
	}
	return d.DiscountAmount.Decimal
}
