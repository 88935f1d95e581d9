package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type orderTestEnv struct {
	db       *gorm.DB
	orders   *OrderService
	cart     *CartService
	coupons  *CouponAdminService
	settings *SettingService
	user     models.User
	category models.Category
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	t.Helper()
	db := openServiceTestDB(t,
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
	)

	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponService := NewCouponService(couponRepo, usageRepo)
	settingService := NewSettingService(repository.NewSettingRepository(db))

	env := &orderTestEnv{
		db:       db,
		orders:   NewOrderService(repository.NewOrderRepository(db), productRepo, cartRepo, couponService, settingService, nil, 15),
		cart:     NewCartService(cartRepo, productRepo, couponService),
		coupons:  NewCouponAdminService(couponRepo, usageRepo, nil),
		settings: settingService,
		user:     models.User{Email: "buyer@example.com", PasswordHash: "x", Status: constants.UserStatusActive},
		category: models.Category{Slug: "shoes", NameJSON: models.JSON{"en-US": "Shoes"}, IsActive: true},
	}
	if err := db.Create(&env.user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := db.Create(&env.category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return env
}

func (e *orderTestEnv) createProduct(t *testing.T, slug, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		CategoryID:  e.category.ID,
		Slug:        slug,
		TitleJSON:   models.JSON{"en-US": slug},
		PriceAmount: models.MustMoney(price),
		Stock:       stock,
		IsActive:    true,
	}
	if err := e.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (e *orderTestEnv) setTaxRate(t *testing.T, rate string) {
	t.Helper()
	if _, err := e.settings.Update(context.Background(), constants.SettingKeyTaxConfig, map[string]interface{}{
		constants.SettingFieldTaxRate: rate,
	}); err != nil {
		t.Fatalf("set tax rate failed: %v", err)
	}
}

func (e *orderTestEnv) reloadProduct(t *testing.T, id uint) models.Product {
	t.Helper()
	var product models.Product
	if err := e.db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product
}

func (e *orderTestEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

func TestCreateOrderWithLineCoupon(t *testing.T) {
	env := setupOrderServiceTest(t)
	env.setTaxRate(t, "10")
	product := env.createProduct(t, "runner", "80", 5)
	coupon, err := env.coupons.Create(CouponInput{
		Code:               "LINE25",
		Type:               constants.CouponTypePercentage,
		Discount:           models.MustMoney("25"),
		ApplicableProducts: []uint{product.ID},
	})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	upserted, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 2, CouponCode: "line25"})
	if err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	if !upserted.CouponApplied || upserted.Item.DiscountedPrice == nil || upserted.Item.DiscountedPrice.String() != "60.00" {
		t.Fatalf("unexpected cart line: %+v", upserted)
	}

	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("unexpected status: %s", order.Status)
	}
	checks := map[string][2]string{
		"original": {"160.00", order.OriginalAmount.String()},
		"discount": {"40.00", order.DiscountAmount.String()},
		"tax_rate": {"10.00", order.TaxRate.String()},
		"tax":      {"12.00", order.TaxAmount.String()},
		"total":    {"132.00", order.TotalAmount.String()},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("%s want %s got %s", name, pair[0], pair[1])
		}
	}
	if len(order.Items) != 1 || order.Items[0].CouponCode != "LINE25" || order.Items[0].CouponDiscount.String() != "40.00" {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	reloaded := env.reloadProduct(t, product.ID)
	if reloaded.Stock != 3 || reloaded.SoldCount != 2 {
		t.Fatalf("unexpected stock want 3/2 got %d/%d", reloaded.Stock, reloaded.SoldCount)
	}
	used, usage, err := env.coupons.Ledger().HasUsed(coupon.ID, env.user.ID)
	if err != nil || !used {
		t.Fatalf("expected ledger row, used=%v err=%v", used, err)
	}
	if usage.OrderID == nil || *usage.OrderID != order.ID {
		t.Fatalf("ledger row not linked to order: %+v", usage)
	}
	if count := env.countRows(t, &models.CartItem{}); count != 0 {
		t.Fatalf("cart should be cleared, got %d rows", count)
	}
}

func TestCreateOrderWithOrderCouponRejectsReuse(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := env.createProduct(t, "console", "500", constants.StockUnlimited)
	if _, err := env.coupons.Create(CouponInput{
		Code:        "BIG20",
		Type:        constants.CouponTypePercentage,
		Discount:    models.MustMoney("20"),
		MaxDiscount: models.MustMoney("50"),
	}); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}

	preview, err := env.orders.PreviewOrder(CheckoutInput{UserID: env.user.ID, CouponCode: "big20"})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.DiscountAmount.String() != "50.00" || preview.TotalAmount.String() != "950.00" || preview.CouponCode != "BIG20" {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID, CouponCode: "big20"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.CouponCode != "BIG20" || order.TotalAmount.String() != "950.00" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if unlimited := env.reloadProduct(t, product.ID); unlimited.Stock != constants.StockUnlimited || unlimited.SoldCount != 2 {
		t.Fatalf("unexpected unlimited stock state: %+v", unlimited)
	}

	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	_, err = env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID, CouponCode: "BIG20"})
	if !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("want ErrCouponAlreadyUsed got %v", err)
	}
	if count := env.countRows(t, &models.Order{}); count != 1 {
		t.Fatalf("failed checkout must not create orders, got %d", count)
	}
	if count := env.countRows(t, &models.CartItem{}); count != 1 {
		t.Fatalf("failed checkout must keep the cart, got %d rows", count)
	}
}

func TestCreateOrderDropsInvalidLineCoupon(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := env.createProduct(t, "socks", "20", 10)
	coupon, err := env.coupons.Create(CouponInput{Code: "SOCKS5", Type: constants.CouponTypeFlat, Discount: models.MustMoney("5")})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 1, CouponCode: "SOCKS5"}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	if err := env.db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate coupon failed: %v", err)
	}

	preview, err := env.orders.PreviewOrder(CheckoutInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if len(preview.DroppedCoupons) != 1 || preview.DroppedCoupons[0].Reason != constants.CouponRejectInactive {
		t.Fatalf("unexpected dropped coupons: %+v", preview.DroppedCoupons)
	}

	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.DiscountAmount.String() != "0.00" || order.TotalAmount.String() != "20.00" {
		t.Fatalf("unexpected amounts: discount=%s total=%s", order.DiscountAmount.String(), order.TotalAmount.String())
	}
	if count := env.countRows(t, &models.CouponUsage{}); count != 0 {
		t.Fatalf("dropped coupon must not be recorded, got %d rows", count)
	}
}

func TestCreateOrderEmptyCartAndStock(t *testing.T) {
	env := setupOrderServiceTest(t)
	if _, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty got %v", err)
	}

	product := env.createProduct(t, "limited", "10", 1)
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 2}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("want ErrStockInsufficient got %v", err)
	}
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	if err := env.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", 0).Error; err != nil {
		t.Fatalf("drain stock failed: %v", err)
	}
	if _, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("want ErrStockInsufficient got %v", err)
	}
}

func TestCancelOrderRestoresStockKeepsLedger(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := env.createProduct(t, "jacket", "100", 5)
	if _, err := env.coupons.Create(CouponInput{Code: "TEN", Type: constants.CouponTypeFlat, Discount: models.MustMoney("10")}); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID, CouponCode: "ten"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	canceled, err := env.orders.CancelOrder(order.ID, env.user.ID)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("unexpected canceled order: %+v", canceled)
	}
	if reloaded := env.reloadProduct(t, product.ID); reloaded.Stock != 5 || reloaded.SoldCount != 0 {
		t.Fatalf("stock not restored: %d/%d", reloaded.Stock, reloaded.SoldCount)
	}
	if count := env.countRows(t, &models.CouponUsage{}); count != 1 {
		t.Fatalf("ledger rows must be kept on cancel, got %d", count)
	}
	if _, err := env.orders.CancelOrder(order.ID, env.user.ID); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("want ErrOrderCancelNotAllowed got %v", err)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := env.createProduct(t, "lamp", "30", 5)
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := env.orders.UpdateOrderStatus(order.ID, constants.OrderStatusCompleted); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("pending -> completed want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := env.orders.UpdateOrderStatus(order.ID, "shipped"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("unknown status want ErrOrderStatusInvalid got %v", err)
	}
	paid, err := env.orders.UpdateOrderStatus(order.ID, constants.OrderStatusPaid)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}
	completed, err := env.orders.UpdateOrderStatus(order.ID, constants.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("completed_at should be set")
	}
	if _, err := env.orders.UpdateOrderStatus(order.ID, constants.OrderStatusCanceled); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("completed -> canceled want ErrOrderStatusInvalid got %v", err)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := env.createProduct(t, "mug", "12", 3)
	if _, err := env.cart.UpsertItem(UpsertCartItemInput{UserID: env.user.ID, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert cart item failed: %v", err)
	}
	order, err := env.orders.CreateOrder(CheckoutInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	same, err := env.orders.CancelExpiredOrder(order.ID)
	if err != nil || same.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("unexpired order should stay pending, status=%v err=%v", same, err)
	}

	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("expire order failed: %v", err)
	}
	expired, err := env.orders.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if expired.Status != constants.OrderStatusCanceled {
		t.Fatalf("want canceled got %s", expired.Status)
	}
	if reloaded := env.reloadProduct(t, product.ID); reloaded.Stock != 3 {
		t.Fatalf("stock not restored: %d", reloaded.Stock)
	}
}

func TestAllocateOrderDiscount(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: 1, TotalPrice: models.MustMoney("100")},
		{ProductID: 2, TotalPrice: models.MustMoney("50")},
		{ProductID: 3, TotalPrice: models.MustMoney("50")},
	}
	coupon := &models.Coupon{ID: 7, Code: "SPLIT", ApplicableProducts: datatypes.NewJSONSlice([]uint{1, 2})}
	allocateOrderDiscount(items, coupon, decimal.NewFromInt(30))

	want := []string{"20", "10", "0"}
	for i, item := range items {
		if !item.CouponDiscount.Decimal.Equal(decimal.RequireFromString(want[i])) {
			t.Fatalf("item %d want %s got %s", i, want[i], item.CouponDiscount.String())
		}
	}
	if items[2].CouponID != nil {
		t.Fatalf("uncovered item should not carry the coupon")
	}
}
