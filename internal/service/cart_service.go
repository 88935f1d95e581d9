package service

import (
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID       uint            `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       models.Money    `json:"unit_price"`
	OriginalPrice   models.Money    `json:"original_price"`
	DiscountedPrice *models.Money   `json:"discounted_price"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	LineTotal       models.Money    `json:"line_total"`
	Product         *models.Product `json:"product"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID     uint
	ProductID  uint
	Quantity   int
	CouponCode string
}

// UpsertCartItemResult 购物车更新结果
// 优惠券不可用时不会让整个操作失败，而是丢弃优惠券并回传原因。
type UpsertCartItemResult struct {
	Item          CartItemDetail `json:"item"`
	CouponApplied bool           `json:"coupon_applied"`
	CouponReason  string         `json:"coupon_reason,omitempty"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	couponService *CouponService
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, couponService *CouponService) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		couponService: couponService,
	}
}

func buildCartItemDetail(item models.CartItem, product *models.Product) CartItemDetail {
	unitPrice := item.EffectiveUnitPrice()
	return CartItemDetail{
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		UnitPrice:       unitPrice,
		OriginalPrice:   item.OriginalPrice,
		DiscountedPrice: item.DiscountedPrice,
		CouponCode:      item.CouponCode,
		LineTotal:       models.MoneyOf(unitPrice.Decimal.Mul(decimalFromInt(item.Quantity))),
		Product:         product,
	}
}

// ListByUser 获取用户购物车，已下架商品会被自动移除
func (s *CartService) ListByUser(userID uint) ([]CartItemDetail, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			if err := s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID); err != nil {
				logger.Warnw("cart_prune_inactive_failed", "user_id", userID, "product_id", item.ProductID, "error", err)
			}
			continue
		}
		details = append(details, buildCartItemDetail(item, product))
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项，可附带行级优惠码
func (s *CartService) UpsertItem(input UpsertCartItemInput) (*UpsertCartItemResult, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	if !stockAvailable(product.Stock, input.Quantity) {
		return nil, ErrStockInsufficient
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:        input.UserID,
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		OriginalPrice: product.PriceAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	result := &UpsertCartItemResult{}

	if code := NormalizeCouponCode(input.CouponCode); code != "" {
		line, err := s.couponService.EvaluateForCartLine(code, input.UserID, product)
		if err != nil {
			return nil, err
		}
		if line.Coupon != nil {
			couponID := line.Coupon.ID
			item.CouponID = &couponID
			item.CouponCode = line.Coupon.Code
			item.DiscountedPrice = line.DiscountedPrice
			result.CouponApplied = true
		} else {
			result.CouponReason = line.Reason
			logger.Debugw("cart_coupon_dropped", "user_id", input.UserID, "product_id", input.ProductID, "code", code, "reason", line.Reason)
		}
	}

	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	result.Item = buildCartItemDetail(*item, product)
	return result, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidInput
	}
	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.cartRepo.ClearByUser(userID)
}
