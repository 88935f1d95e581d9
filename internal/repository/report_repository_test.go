package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

func setupReportRepositoryTest(t *testing.T) (*GormReportRepository, *gorm.DB) {
	t.Helper()
	db := openRepositoryTestDB(t,
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Order{},
		&models.OrderItem{},
	)
	return NewReportRepository(db), db
}

type reportFixture struct {
	user     *models.User
	product  *models.Product
	coupon   *models.Coupon
	paidAt   time.Time
	rangeArg ReportRange
}

func seedReportFixture(t *testing.T, db *gorm.DB) reportFixture {
	t.Helper()
	paidAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	user := &models.User{Email: "buyer@example.com", PasswordHash: "x", DisplayName: "Buyer", CreatedAt: paidAt.Add(-time.Hour)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	product := &models.Product{
		CategoryID:  1,
		Slug:        "report-product",
		TitleJSON:   models.JSON{"en-US": "Report Product"},
		PriceAmount: models.MustMoney("50"),
		Stock:       10,
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	coupon := &models.Coupon{Code: "REPORT10", Type: constants.CouponTypeFlat, Discount: models.MustMoney("10"), IsActive: true}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	paid := &models.Order{
		OrderNo:        "SF-REPORT-1",
		UserID:         user.ID,
		Status:         constants.OrderStatusPaid,
		Currency:       "USD",
		OriginalAmount: models.MustMoney("100"),
		DiscountAmount: models.MustMoney("10"),
		TaxRate:        models.MustMoney("10"),
		TaxAmount:      models.MustMoney("9"),
		TotalAmount:    models.MustMoney("99"),
		CouponID:       &coupon.ID,
		CouponCode:     coupon.Code,
		PaidAt:         &paidAt,
		CreatedAt:      paidAt,
	}
	if err := db.Create(paid).Error; err != nil {
		t.Fatalf("create paid order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:    paid.ID,
		ProductID:  product.ID,
		CategoryID: 1,
		TitleJSON:  models.JSON{"en-US": "Report Product"},
		UnitPrice:  models.MustMoney("50"),
		Quantity:   2,
		TotalPrice: models.MustMoney("100"),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	if err := db.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: user.ID, OrderID: &paid.ID, UsedAt: paidAt}).Error; err != nil {
		t.Fatalf("create coupon usage failed: %v", err)
	}

	pending := &models.Order{
		OrderNo:        "SF-REPORT-2",
		UserID:         user.ID,
		Status:         constants.OrderStatusPendingPayment,
		Currency:       "USD",
		OriginalAmount: models.MustMoney("40"),
		TotalAmount:    models.MustMoney("40"),
		CreatedAt:      paidAt,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("create pending order failed: %v", err)
	}

	return reportFixture{
		user:    user,
		product: product,
		coupon:  coupon,
		paidAt:  paidAt,
		rangeArg: ReportRange{
			From:  paidAt.Add(-24 * time.Hour),
			To:    paidAt.Add(24 * time.Hour),
			Limit: 5,
		},
	}
}

func TestReportOverviewCountsPaidOrdersOnly(t *testing.T) {
	repo, db := setupReportRepositoryTest(t)
	fx := seedReportFixture(t, db)

	row, err := repo.GetOverview(fx.rangeArg.From, fx.rangeArg.To)
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if row.OrdersTotal != 2 || row.PaidOrders != 1 || row.PendingPaymentOrders != 1 {
		t.Fatalf("order counts unexpected: %+v", row)
	}
	if row.GrossSales != 100 || row.DiscountTotal != 10 || row.TaxTotal != 9 || row.NetSales != 99 {
		t.Fatalf("amounts unexpected: %+v", row)
	}
	if row.CouponRedemptions != 1 {
		t.Fatalf("coupon redemptions want 1 got %d", row.CouponRedemptions)
	}
	if row.NewUsers != 1 || row.ActiveProducts != 1 {
		t.Fatalf("users/products unexpected: %+v", row)
	}
}

func TestReportSalesAndTaxByDay(t *testing.T) {
	repo, db := setupReportRepositoryTest(t)
	fx := seedReportFixture(t, db)

	sales, err := repo.SalesByDay(fx.rangeArg)
	if err != nil {
		t.Fatalf("sales by day failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("sales rows want 1 got %d", len(sales))
	}
	if sales[0].Day != "2026-03-10" || sales[0].OrderCount != 1 || sales[0].NetAmount != 99 {
		t.Fatalf("sales row unexpected: %+v", sales[0])
	}

	tax, err := repo.TaxByDay(fx.rangeArg)
	if err != nil {
		t.Fatalf("tax by day failed: %v", err)
	}
	if len(tax) != 1 || tax[0].TaxableBase != 90 || tax[0].TaxAmount != 9 {
		t.Fatalf("tax rows unexpected: %+v", tax)
	}
}

func TestReportTopProductsAndCustomers(t *testing.T) {
	repo, db := setupReportRepositoryTest(t)
	fx := seedReportFixture(t, db)

	products, err := repo.TopProducts(fx.rangeArg)
	if err != nil {
		t.Fatalf("top products failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("top products want 1 got %d", len(products))
	}
	if products[0].ProductID != fx.product.ID || products[0].Quantity != 2 || products[0].Revenue != 100 {
		t.Fatalf("top product unexpected: %+v", products[0])
	}
	if products[0].Title != "Report Product" {
		t.Fatalf("top product title want Report Product got %q", products[0].Title)
	}

	customers, err := repo.TopCustomers(fx.rangeArg)
	if err != nil {
		t.Fatalf("top customers failed: %v", err)
	}
	if len(customers) != 1 || customers[0].Email != "buyer@example.com" || customers[0].TotalSpent != 99 {
		t.Fatalf("top customers unexpected: %+v", customers)
	}
}

func TestReportCouponPerformanceMergesOrderDiscount(t *testing.T) {
	repo, db := setupReportRepositoryTest(t)
	fx := seedReportFixture(t, db)

	rows, err := repo.CouponPerformance(fx.rangeArg)
	if err != nil {
		t.Fatalf("coupon performance failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("coupon rows want 1 got %d", len(rows))
	}
	row := rows[0]
	if row.Code != "REPORT10" || row.Redemptions != 1 || row.OrderCount != 1 || row.DiscountAmount != 10 {
		t.Fatalf("coupon row unexpected: %+v", row)
	}
}
