package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券校验与应用服务
// 只读：使用记录在下单事务内由 CouponLedger 写入。
type CouponService struct {
	couponRepo repository.CouponRepository
	ledger     *CouponLedger
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		ledger:     NewCouponLedger(couponRepo, usageRepo),
		now:        time.Now,
	}
}

// Ledger 返回使用记录账本
func (s *CouponService) Ledger() *CouponLedger {
	return s.ledger
}

// CouponQuery 校验与应用优惠券的入参
type CouponQuery struct {
	Code        string
	UserID      uint
	ProductIDs  []uint
	CategoryIDs []uint
	TotalAmount *models.Money
}

// CouponValidation 校验结果
type CouponValidation struct {
	Valid  bool           `json:"valid"`
	Coupon *models.Coupon `json:"coupon"`
}

// CouponApplyResult 应用结果
type CouponApplyResult struct {
	OriginalAmount models.Money   `json:"original_amount"`
	DiscountAmount models.Money   `json:"discount_amount"`
	FinalAmount    models.Money   `json:"final_amount"`
	CouponCode     string         `json:"coupon_code"`
	CouponType     string         `json:"coupon_type"`
	CouponDiscount models.Money   `json:"coupon_discount"`
	Coupon         *models.Coupon `json:"coupon"`
}

// CouponUsageStatus 用户使用情况
type CouponUsageStatus struct {
	Used    bool       `json:"used"`
	CanUse  bool       `json:"can_use"`
	Message string     `json:"message"`
	UsedAt  *time.Time `json:"used_at,omitempty"`
}

// NormalizeCouponCode 优惠码统一去空格并转大写
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FindByCode 按优惠码查找（大小写不敏感）
func (s *CouponService) FindByCode(code string) (*models.Coupon, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return nil, nil
	}
	return s.couponRepo.GetByCode(normalized)
}

// redemptions 仅在设置了总量上限时查询使用记录
func (s *CouponService) redemptions(coupon *models.Coupon) (int64, error) {
	if coupon == nil || coupon.UsageLimit <= 0 {
		return 0, nil
	}
	return s.ledger.Redemptions(coupon.ID)
}

func (s *CouponService) evaluate(coupon *models.Coupon, ctx CouponContext) error {
	redemptions, err := s.redemptions(coupon)
	if err != nil {
		return err
	}
	return EvaluateCouponEligibility(coupon, redemptions, ctx, s.now())
}

func queryContext(query CouponQuery) CouponContext {
	ctx := CouponContext{
		UserID:      query.UserID,
		ProductIDs:  query.ProductIDs,
		CategoryIDs: query.CategoryIDs,
	}
	if query.TotalAmount != nil {
		total := query.TotalAmount.Decimal
		ctx.TotalAmount = &total
	}
	return ctx
}

// ValidateCoupon 校验优惠券是否可用（不检查用户是否已使用）
func (s *CouponService) ValidateCoupon(query CouponQuery) (*CouponValidation, error) {
	coupon, err := s.FindByCode(query.Code)
	if err != nil {
		return nil, err
	}
	if err := s.evaluate(coupon, queryContext(query)); err != nil {
		return nil, err
	}
	return &CouponValidation{Valid: true, Coupon: coupon}, nil
}

// ApplyCoupon 校验并计算整单优惠；已登录用户额外检查是否已使用
func (s *CouponService) ApplyCoupon(query CouponQuery, total models.Money) (*CouponApplyResult, error) {
	if total.Decimal.IsNegative() {
		return nil, ErrInvalidInput
	}
	query.TotalAmount = &total

	coupon, err := s.FindByCode(query.Code)
	if err != nil {
		return nil, err
	}
	if err := s.evaluate(coupon, queryContext(query)); err != nil {
		return nil, err
	}
	if query.UserID != 0 {
		used, _, err := s.ledger.HasUsed(coupon.ID, query.UserID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrCouponAlreadyUsed
		}
	}

	discount := ComputeCouponDiscount(coupon, total.Decimal)
	return &CouponApplyResult{
		OriginalAmount: models.MoneyOf(total.Decimal),
		DiscountAmount: discount.DiscountAmount,
		FinalAmount:    discount.FinalAmount,
		CouponCode:     coupon.Code,
		CouponType:     coupon.Type,
		CouponDiscount: coupon.Discount,
		Coupon:         coupon,
	}, nil
}

// CheckUserCouponUsage 查询用户对某张券的使用情况
func (s *CouponService) CheckUserCouponUsage(userID uint, code string) (*CouponUsageStatus, error) {
	coupon, err := s.FindByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	used, usage, err := s.ledger.HasUsed(coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		usedAt := usage.UsedAt
		return &CouponUsageStatus{
			Used:    true,
			CanUse:  false,
			Message: constants.CouponRejectAlreadyUsed,
			UsedAt:  &usedAt,
		}, nil
	}

	if err := s.evaluate(coupon, CouponContext{UserID: userID}); err != nil {
		reason := CouponRejectReason(err)
		if reason == "" {
			return nil, err
		}
		return &CouponUsageStatus{Used: false, CanUse: false, Message: reason}, nil
	}
	return &CouponUsageStatus{Used: false, CanUse: true, Message: constants.CouponUsageAvailable}, nil
}

// CartLineCoupon 购物车行优惠结果
type CartLineCoupon struct {
	Coupon          *models.Coupon
	DiscountedPrice *models.Money
	Reason          string
}

// EvaluateForCartLine 购物车单行软校验：不可用时返回原因而不是错误
// 折后单价只有在产生正向优惠时才返回，且一定低于原价。
func (s *CouponService) EvaluateForCartLine(code string, userID uint, product *models.Product) (*CartLineCoupon, error) {
	if product == nil {
		return nil, ErrProductNotFound
	}
	coupon, err := s.FindByCode(code)
	if err != nil {
		return nil, err
	}
	redemptions, err := s.redemptions(coupon)
	if err != nil {
		return nil, err
	}
	if err := EvaluateCouponForProduct(coupon, redemptions, userID, product, s.now()); err != nil {
		if reason := CouponRejectReason(err); reason != "" {
			return &CartLineCoupon{Reason: reason}, nil
		}
		return nil, err
	}
	used, _, err := s.ledger.HasUsed(coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		return &CartLineCoupon{Reason: constants.CouponRejectAlreadyUsed}, nil
	}

	result := &CartLineCoupon{Coupon: coupon}
	price := product.PriceAmount.Decimal
	discount := ComputeCouponDiscount(coupon, price)
	if discount.FinalAmount.Decimal.LessThan(price) {
		result.DiscountedPrice = discount.FinalAmount.Ptr()
	}
	return result, nil
}

func productContext(userID uint, product *models.Product) CouponContext {
	price := product.PriceAmount.Decimal
	ctx := CouponContext{
		UserID:      userID,
		ProductIDs:  []uint{product.ID},
		TotalAmount: &price,
	}
	if product.CategoryID != 0 {
		ctx.CategoryIDs = []uint{product.CategoryID}
	}
	return ctx
}

// lineDiscount 计算行级优惠的总额（单价优惠 * 数量）
func lineDiscount(coupon *models.Coupon, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	perUnit := ComputeCouponDiscount(coupon, unitPrice).EffectiveDiscount(unitPrice)
	return perUnit.Mul(decimal.NewFromInt(int64(quantity)))
}
