package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	cartRepo       repository.CartRepository
	couponService  *CouponService
	settingService *SettingService
	queueClient    *queue.Client
	expireMinutes  int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, couponService *CouponService, settingService *SettingService, queueClient *queue.Client, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		cartRepo:       cartRepo,
		couponService:  couponService,
		settingService: settingService,
		queueClient:    queueClient,
		expireMinutes:  expireMinutes,
	}
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	UserID     uint
	CouponCode string
	Remark     string
	ClientIP   string
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	Currency       string             `json:"currency"`
	OriginalAmount models.Money       `json:"original_amount"`
	DiscountAmount models.Money       `json:"discount_amount"`
	TaxRate        models.Money       `json:"tax_rate"`
	TaxAmount      models.Money       `json:"tax_amount"`
	TotalAmount    models.Money       `json:"total_amount"`
	CouponCode     string             `json:"coupon_code,omitempty"`
	Items          []OrderPreviewItem `json:"items"`
	DroppedCoupons []DroppedCoupon    `json:"dropped_coupons,omitempty"`
}

// OrderPreviewItem 预览订单项
type OrderPreviewItem struct {
	ProductID      uint               `json:"product_id"`
	TitleJSON      models.JSON        `json:"title"`
	Tags           models.StringArray `json:"tags"`
	UnitPrice      models.Money       `json:"unit_price"`
	Quantity       int                `json:"quantity"`
	TotalPrice     models.Money       `json:"total_price"`
	CouponCode     string             `json:"coupon_code,omitempty"`
	CouponDiscount models.Money       `json:"coupon_discount_amount"`
}

// DroppedCoupon 结算时因失效被移除的行级优惠券
type DroppedCoupon struct {
	ProductID  uint   `json:"product_id"`
	CouponCode string `json:"coupon_code"`
	Reason     string `json:"reason"`
}

// checkoutPlan 结算计划
type checkoutPlan struct {
	Currency       string
	Items          []models.OrderItem
	OrderCoupon    *models.Coupon
	LedgerCoupons  []uint
	Dropped        []DroppedCoupon
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// PreviewOrder 按当前购物车计算金额，不写库
func (s *OrderService) PreviewOrder(input CheckoutInput) (*OrderPreview, error) {
	plan, err := s.buildCheckoutPlan(input)
	if err != nil {
		return nil, err
	}
	items := make([]OrderPreviewItem, 0, len(plan.Items))
	for _, item := range plan.Items {
		items = append(items, OrderPreviewItem{
			ProductID:      item.ProductID,
			TitleJSON:      item.TitleJSON,
			Tags:           item.Tags,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			TotalPrice:     item.TotalPrice,
			CouponCode:     item.CouponCode,
			CouponDiscount: item.CouponDiscount,
		})
	}
	preview := &OrderPreview{
		Currency:       plan.Currency,
		OriginalAmount: models.MoneyOf(plan.OriginalAmount),
		DiscountAmount: models.MoneyOf(plan.DiscountAmount),
		TaxRate:        models.MoneyOf(plan.TaxRate),
		TaxAmount:      models.MoneyOf(plan.TaxAmount),
		TotalAmount:    models.MoneyOf(plan.TotalAmount),
		Items:          items,
		DroppedCoupons: plan.Dropped,
	}
	if plan.OrderCoupon != nil {
		preview.CouponCode = plan.OrderCoupon.Code
	}
	return preview, nil
}

// CreateOrder 从购物车创建订单
// 订单、订单项、优惠券使用记录、库存扣减与清空购物车在同一事务内完成。
func (s *OrderService) CreateOrder(input CheckoutInput) (*models.Order, error) {
	plan, err := s.buildCheckoutPlan(input)
	if err != nil {
		return nil, err
	}

	expireMinutes := s.resolveExpireMinutes()
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)
	order := &models.Order{
		OrderNo:        generateOrderNo(),
		UserID:         input.UserID,
		Status:         constants.OrderStatusPendingPayment,
		Currency:       plan.Currency,
		OriginalAmount: models.MoneyOf(plan.OriginalAmount),
		DiscountAmount: models.MoneyOf(plan.DiscountAmount),
		TaxRate:        models.MoneyOf(plan.TaxRate),
		TaxAmount:      models.MoneyOf(plan.TaxAmount),
		TotalAmount:    models.MoneyOf(plan.TotalAmount),
		Remark:         strings.TrimSpace(input.Remark),
		ClientIP:       strings.TrimSpace(input.ClientIP),
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if plan.OrderCoupon != nil {
		couponID := plan.OrderCoupon.ID
		order.CouponID = &couponID
		order.CouponCode = plan.OrderCoupon.Code
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, plan.Items); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range plan.Items {
			ok, err := productRepo.DeductStock(item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("deduct stock: %w", err)
			}
			if !ok {
				return ErrStockInsufficient
			}
		}
		for _, couponID := range plan.LedgerCoupons {
			if _, err := s.couponService.Ledger().RecordUsage(tx, couponID, input.UserID, &order.ID, now); err != nil {
				return err
			}
		}
		return s.cartRepo.WithTx(tx).ClearByUser(input.UserID)
	})
	if err != nil {
		if !IsCouponRejection(err) && !errors.Is(err, ErrStockInsufficient) {
			logger.Errorw("order_create_failed", "user_id", input.UserID, "error", err)
		}
		return nil, err
	}

	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, time.Duration(expireMinutes)*time.Minute); err != nil {
			// 队列失败时由读取路径的懒取消兜底
			logger.Warnw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
		}
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

func (s *OrderService) buildCheckoutPlan(input CheckoutInput) (*checkoutPlan, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	cartItems, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	plan := &checkoutPlan{Currency: s.resolveSiteCurrency()}
	products := make([]*models.Product, 0, len(cartItems))
	productIDs := make([]uint, 0, len(cartItems))
	categoryIDs := make([]uint, 0, len(cartItems))
	subtotal := decimal.Zero

	for _, cartItem := range cartItems {
		product := cartItem.Product
		if product == nil || product.ID == 0 {
			product, err = s.productRepo.GetByID(cartItem.ProductID)
			if err != nil {
				return nil, err
			}
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		if !stockAvailable(product.Stock, cartItem.Quantity) {
			return nil, ErrStockInsufficient
		}
		unitPrice := product.PriceAmount.Decimal
		lineTotal := unitPrice.Mul(decimalFromInt(cartItem.Quantity))
		plan.Items = append(plan.Items, models.OrderItem{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			TitleJSON:  product.TitleJSON,
			Tags:       product.Tags,
			UnitPrice:  models.MoneyOf(unitPrice),
			Quantity:   cartItem.Quantity,
			TotalPrice: models.MoneyOf(lineTotal),
			CouponCode: cartItem.CouponCode,
		})
		products = append(products, product)
		productIDs = append(productIDs, product.ID)
		if product.CategoryID != 0 {
			categoryIDs = append(categoryIDs, product.CategoryID)
		}
		subtotal = subtotal.Add(lineTotal)
	}
	plan.OriginalAmount = subtotal.Round(2)

	if code := NormalizeCouponCode(input.CouponCode); code != "" {
		// 整单优惠券：行按原价结算，行级优惠券全部忽略
		applied, err := s.couponService.ApplyCoupon(CouponQuery{
			Code:        code,
			UserID:      input.UserID,
			ProductIDs:  productIDs,
			CategoryIDs: categoryIDs,
		}, models.MoneyOf(plan.OriginalAmount))
		if err != nil {
			return nil, err
		}
		discount := decimal.Min(applied.DiscountAmount.Decimal, plan.OriginalAmount)
		for i := range plan.Items {
			plan.Items[i].CouponCode = ""
		}
		allocateOrderDiscount(plan.Items, applied.Coupon, discount)
		plan.OrderCoupon = applied.Coupon
		plan.LedgerCoupons = []uint{applied.Coupon.ID}
		plan.DiscountAmount = discount
	} else if err := s.applyLineCoupons(plan, products, input.UserID); err != nil {
		return nil, err
	}

	rate, err := s.settingService.GetTaxRatePercent()
	if err != nil {
		return nil, err
	}
	taxable := normalizeOrderAmount(plan.OriginalAmount.Sub(plan.DiscountAmount))
	plan.TaxRate = rate
	plan.TaxAmount = taxable.Mul(rate).Div(hundred).Round(2)
	plan.TotalAmount = normalizeOrderAmount(taxable.Add(plan.TaxAmount))
	return plan, nil
}

// applyLineCoupons 重新校验购物车行上的优惠券，失效的静默移除
func (s *OrderService) applyLineCoupons(plan *checkoutPlan, products []*models.Product, userID uint) error {
	seen := make(map[uint]struct{})
	discount := decimal.Zero
	for i := range plan.Items {
		item := &plan.Items[i]
		if item.CouponCode == "" {
			continue
		}
		line, err := s.couponService.EvaluateForCartLine(item.CouponCode, userID, products[i])
		if err != nil {
			return err
		}
		if line.Coupon == nil {
			plan.Dropped = append(plan.Dropped, DroppedCoupon{ProductID: item.ProductID, CouponCode: item.CouponCode, Reason: line.Reason})
			logger.Infow("order_line_coupon_dropped", "user_id", userID, "product_id", item.ProductID, "code", item.CouponCode, "reason", line.Reason)
			item.CouponCode = ""
			continue
		}
		amount := decimal.Min(lineDiscount(line.Coupon, item.UnitPrice.Decimal, item.Quantity), item.TotalPrice.Decimal)
		couponID := line.Coupon.ID
		item.CouponID = &couponID
		item.CouponCode = line.Coupon.Code
		item.CouponDiscount = models.MoneyOf(amount)
		discount = discount.Add(item.CouponDiscount.Decimal)
		if _, ok := seen[couponID]; !ok {
			seen[couponID] = struct{}{}
			plan.LedgerCoupons = append(plan.LedgerCoupons, couponID)
		}
	}
	plan.DiscountAmount = decimal.Min(discount, plan.OriginalAmount)
	return nil
}

// CancelOrder 用户取消订单（仅待支付）
func (s *OrderService) CancelOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil, ErrOrderCancelNotAllowed
	}
	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus 管理端更新订单状态
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	targetStatus = strings.TrimSpace(targetStatus)
	if !IsValidOrderStatus(targetStatus) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, targetStatus) {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status == targetStatus {
		return order, nil
	}
	if targetStatus == constants.OrderStatusCanceled {
		if err := s.cancelOrder(order); err != nil {
			return nil, err
		}
		return order, nil
	}

	now := time.Now()
	ok, err := s.orderRepo.UpdateStatus(order.ID, order.Status, targetStatus, statusTimestampUpdates(targetStatus, now))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderStatusInvalid
	}
	applyStatusTimestamps(order, targetStatus, now)
	logger.Infow("order_status_updated", "order_id", order.ID, "status", targetStatus)
	return order, nil
}

// CancelExpiredOrder 超时取消（worker 调用），非待支付或未过期时直接返回
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isOrderExpired(order, time.Now()) {
		return order, nil
	}
	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// cancelOrder 取消订单并归还库存，优惠券使用记录保留
func (s *OrderService) cancelOrder(order *models.Order) error {
	now := time.Now()
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusPendingPayment, constants.OrderStatusCanceled, statusTimestampUpdates(constants.OrderStatusCanceled, now))
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderCancelNotAllowed
		}
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	applyStatusTimestamps(order, constants.OrderStatusCanceled, now)
	logger.Infow("order_canceled", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func isOrderExpired(order *models.Order, now time.Time) bool {
	if order == nil || order.Status != constants.OrderStatusPendingPayment || order.ExpiresAt == nil {
		return false
	}
	return !order.ExpiresAt.After(now)
}

func (s *OrderService) resolveExpireMinutes() int {
	if s.expireMinutes <= 0 {
		return 15
	}
	return s.expireMinutes
}

func (s *OrderService) resolveSiteCurrency() string {
	if s == nil || s.settingService == nil {
		return constants.SiteCurrencyDefault
	}
	currency, err := s.settingService.GetSiteCurrency(constants.SiteCurrencyDefault)
	if err != nil {
		return constants.SiteCurrencyDefault
	}
	return currency
}

// couponCoversItem 订单项是否落在整单优惠券的适用范围内
func couponCoversItem(coupon *models.Coupon, item models.OrderItem) bool {
	if len(coupon.ApplicableProducts) > 0 && !containsID(coupon.ApplicableProducts, item.ProductID) {
		return false
	}
	if len(coupon.ApplicableCategories) > 0 && !containsID(coupon.ApplicableCategories, item.CategoryID) {
		return false
	}
	return true
}

// allocateOrderDiscount 按小计比例把整单优惠分摊到订单项，尾差落在最后一项
func allocateOrderDiscount(items []models.OrderItem, coupon *models.Coupon, discountAmount decimal.Decimal) {
	if coupon == nil || discountAmount.LessThanOrEqual(decimal.Zero) || len(items) == 0 {
		return
	}
	eligible := make([]int, 0, len(items))
	eligibleTotal := decimal.Zero
	for i := range items {
		if !couponCoversItem(coupon, items[i]) {
			continue
		}
		eligible = append(eligible, i)
		eligibleTotal = eligibleTotal.Add(items[i].TotalPrice.Decimal)
	}
	if len(eligible) == 0 || eligibleTotal.LessThanOrEqual(decimal.Zero) {
		eligible = eligible[:0]
		eligibleTotal = decimal.Zero
		for i := range items {
			eligible = append(eligible, i)
			eligibleTotal = eligibleTotal.Add(items[i].TotalPrice.Decimal)
		}
	}
	if eligibleTotal.LessThanOrEqual(decimal.Zero) {
		return
	}

	couponID := coupon.ID
	remaining := discountAmount
	for n, idx := range eligible {
		lineTotal := items[idx].TotalPrice.Decimal
		var alloc decimal.Decimal
		if n == len(eligible)-1 {
			alloc = remaining.Round(2)
		} else {
			alloc = discountAmount.Mul(lineTotal).Div(eligibleTotal).Round(2)
			if alloc.GreaterThan(remaining) {
				alloc = remaining
			}
		}
		alloc = decimal.Max(decimal.Zero, decimal.Min(alloc, lineTotal))
		items[idx].CouponID = &couponID
		items[idx].CouponCode = coupon.Code
		items[idx].CouponDiscount = models.MoneyOf(alloc)
		remaining = remaining.Sub(alloc).Round(2)
	}
}

func stockAvailable(stock, quantity int) bool {
	return stock == constants.StockUnlimited || stock >= quantity
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("SF%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}

// normalizeOrderAmount 归一化金额精度与下限
func normalizeOrderAmount(amount decimal.Decimal) decimal.Decimal {
	normalized := amount.Round(2)
	if normalized.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return normalized
}
