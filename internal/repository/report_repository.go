package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ReportRepository 报表与仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type ReportRepository interface {
	GetOverview(startAt, endAt time.Time) (ReportOverviewRow, error)
	GetStockStats(threshold int64) (ReportStockStatsRow, error)
	SalesByDay(rng ReportRange) ([]ReportSalesDayRow, error)
	TaxByDay(rng ReportRange) ([]ReportTaxDayRow, error)
	TopCustomers(rng ReportRange) ([]ReportCustomerRow, error)
	NewCustomersByDay(rng ReportRange) ([]ReportNewCustomerDayRow, error)
	TopProducts(rng ReportRange) ([]ReportProductRow, error)
	CouponPerformance(rng ReportRange) ([]ReportCouponRow, error)
}

// ReportOverviewRow 总览原始统计结果
type ReportOverviewRow struct {
	OrdersTotal          int64
	PaidOrders           int64
	CompletedOrders      int64
	PendingPaymentOrders int64
	CanceledOrders       int64
	GrossSales           float64
	DiscountTotal        float64
	TaxTotal             float64
	NetSales             float64
	NewUsers             int64
	ActiveProducts       int64
	CouponRedemptions    int64
}

// ReportStockStatsRow 库存统计
type ReportStockStatsRow struct {
	OutOfStockProducts int64
	LowStockProducts   int64
}

// ReportSalesDayRow 每日销售统计
type ReportSalesDayRow struct {
	Day           string  `json:"day"`
	OrderCount    int64   `json:"orders"`
	GrossAmount   float64 `json:"gross_amount"`
	DiscountTotal float64 `json:"discount_amount"`
	TaxAmount     float64 `json:"tax_amount"`
	NetAmount     float64 `json:"net_amount"`
}

// ReportTaxDayRow 每日税额统计
type ReportTaxDayRow struct {
	Day         string  `json:"day"`
	OrderCount  int64   `json:"orders"`
	TaxableBase float64 `json:"taxable_base"`
	TaxAmount   float64 `json:"tax_amount"`
}

// ReportCustomerRow 客户消费排行
type ReportCustomerRow struct {
	UserID      uint    `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	OrderCount  int64   `json:"orders"`
	TotalSpent  float64 `json:"total_spent"`
	LastOrderAt string  `json:"last_order_at"`
}

// ReportNewCustomerDayRow 每日新增客户
type ReportNewCustomerDayRow struct {
	Day   string `json:"day"`
	Users int64  `json:"users"`
}

// ReportProductRow 商品销售排行
type ReportProductRow struct {
	ProductID  uint    `json:"product_id"`
	Title      string  `json:"title"`
	PaidOrders int64   `json:"paid_orders"`
	Quantity   int64   `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

// ReportCouponRow 优惠券效果统计
type ReportCouponRow struct {
	CouponID       uint    `json:"coupon_id"`
	Code           string  `json:"code"`
	Type           string  `json:"type"`
	Redemptions    int64   `json:"redemptions"`
	OrderCount     int64   `json:"orders"`
	DiscountAmount float64 `json:"discount_amount"`
}

// GormReportRepository GORM 报表聚合实现
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓库
func NewReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// PaidOrderStatuses 计入销售额的订单状态
func PaidOrderStatuses() []string {
	return []string{
		constants.OrderStatusPaid,
		constants.OrderStatusCompleted,
	}
}

func normalizeReportLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// paidOrderBase 已支付订单按支付时间落入区间
func (r *GormReportRepository) paidOrderBase(startAt, endAt time.Time) *gorm.DB {
	return r.db.Model(&models.Order{}).
		Where("orders.status IN ? AND orders.paid_at >= ? AND orders.paid_at < ?", PaidOrderStatuses(), startAt, endAt)
}

// GetOverview 获取总览统计
func (r *GormReportRepository) GetOverview(startAt, endAt time.Time) (ReportOverviewRow, error) {
	result := ReportOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := r.paidOrderBase(startAt, endAt).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCompleted).Count(&result.CompletedOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPendingPayment).Count(&result.PendingPaymentOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCanceled).Count(&result.CanceledOrders).Error; err != nil {
		return result, err
	}

	var amounts struct {
		GrossSales    float64
		DiscountTotal float64
		TaxTotal      float64
		NetSales      float64
	}
	if err := r.paidOrderBase(startAt, endAt).
		Select(`
			COALESCE(SUM(orders.original_amount), 0) as gross_sales,
			COALESCE(SUM(orders.discount_amount), 0) as discount_total,
			COALESCE(SUM(orders.tax_amount), 0) as tax_total,
			COALESCE(SUM(orders.total_amount), 0) as net_sales
		`).
		Scan(&amounts).Error; err != nil {
		return result, err
	}
	result.GrossSales = amounts.GrossSales
	result.DiscountTotal = amounts.DiscountTotal
	result.TaxTotal = amounts.TaxTotal
	result.NetSales = amounts.NetSales

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.CouponUsage{}).
		Where("used_at >= ? AND used_at < ?", startAt, endAt).
		Count(&result.CouponRedemptions).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetStockStats 获取库存统计
func (r *GormReportRepository) GetStockStats(threshold int64) (ReportStockStatsRow, error) {
	result := ReportStockStatsRow{}
	if threshold <= 0 {
		threshold = lowStockThreshold
	}
	activeProducts := func() *gorm.DB {
		return r.db.Model(&models.Product{}).Where("is_active = ?", true)
	}
	if err := activeProducts().Where("stock = 0").Count(&result.OutOfStockProducts).Error; err != nil {
		return result, err
	}
	if err := activeProducts().
		Where("stock > 0 AND stock <= ?", threshold).
		Count(&result.LowStockProducts).Error; err != nil {
		return result, err
	}
	return result, nil
}

// SalesByDay 按支付日期统计销售额
func (r *GormReportRepository) SalesByDay(rng ReportRange) ([]ReportSalesDayRow, error) {
	rows := make([]ReportSalesDayRow, 0)
	dayExpr := dialectOf(r.db).dayBucket("orders.paid_at")
	if err := r.paidOrderBase(rng.From, rng.To).
		Select(fmt.Sprintf(`
			%s as day,
			COUNT(*) as order_count,
			COALESCE(SUM(orders.original_amount), 0) as gross_amount,
			COALESCE(SUM(orders.discount_amount), 0) as discount_total,
			COALESCE(SUM(orders.tax_amount), 0) as tax_amount,
			COALESCE(SUM(orders.total_amount), 0) as net_amount
		`, dayExpr)).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TaxByDay 按支付日期统计计税基数与税额
func (r *GormReportRepository) TaxByDay(rng ReportRange) ([]ReportTaxDayRow, error) {
	rows := make([]ReportTaxDayRow, 0)
	dayExpr := dialectOf(r.db).dayBucket("orders.paid_at")
	if err := r.paidOrderBase(rng.From, rng.To).
		Select(fmt.Sprintf(`
			%s as day,
			COUNT(*) as order_count,
			COALESCE(SUM(orders.original_amount - orders.discount_amount), 0) as taxable_base,
			COALESCE(SUM(orders.tax_amount), 0) as tax_amount
		`, dayExpr)).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopCustomers 获取消费金额排行
func (r *GormReportRepository) TopCustomers(rng ReportRange) ([]ReportCustomerRow, error) {
	rows := make([]ReportCustomerRow, 0)
	if err := r.paidOrderBase(rng.From, rng.To).
		Select(`
			orders.user_id as user_id,
			COALESCE(users.email, '') as email,
			COALESCE(users.display_name, '') as display_name,
			COUNT(*) as order_count,
			COALESCE(SUM(orders.total_amount), 0) as total_spent,
			CAST(MAX(orders.paid_at) AS TEXT) as last_order_at
		`).
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Group("orders.user_id, users.email, users.display_name").
		Order("total_spent DESC, order_count DESC").
		Limit(normalizeReportLimit(rng.Limit)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// NewCustomersByDay 按注册日期统计新增客户
func (r *GormReportRepository) NewCustomersByDay(rng ReportRange) ([]ReportNewCustomerDayRow, error) {
	rows := make([]ReportNewCustomerDayRow, 0)
	dayExpr := dialectOf(r.db).dayBucket("created_at")
	if err := r.db.Model(&models.User{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as users", dayExpr)).
		Where("created_at >= ? AND created_at < ?", rng.From, rng.To).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopProducts 获取商品销量排行（营收扣除行级优惠）
func (r *GormReportRepository) TopProducts(rng ReportRange) ([]ReportProductRow, error) {
	rows := make([]ReportProductRow, 0)
	titleExpr := "MAX(" + dialectOf(r.db).jsonText("order_items.title_json", constants.LocaleEnUS) + ")"
	if err := r.db.Model(&models.OrderItem{}).
		Select(fmt.Sprintf(`
			order_items.product_id as product_id,
			COALESCE(%s, '') as title,
			COUNT(DISTINCT order_items.order_id) as paid_orders,
			COALESCE(SUM(order_items.quantity), 0) as quantity,
			COALESCE(SUM(order_items.total_price - order_items.coupon_discount), 0) as revenue
		`, titleExpr)).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ? AND orders.paid_at >= ? AND orders.paid_at < ?", PaidOrderStatuses(), rng.From, rng.To).
		Group("order_items.product_id").
		Order("revenue DESC, quantity DESC").
		Limit(normalizeReportLimit(rng.Limit)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CouponPerformance 统计区间内各优惠券核销次数与让利金额
func (r *GormReportRepository) CouponPerformance(rng ReportRange) ([]ReportCouponRow, error) {
	redemptions := make([]ReportCouponRow, 0)
	if err := r.db.Model(&models.CouponUsage{}).
		Select(`
			coupon_usages.coupon_id as coupon_id,
			COALESCE(coupons.code, '') as code,
			COALESCE(coupons.type, '') as type,
			COUNT(*) as redemptions
		`).
		Joins("LEFT JOIN coupons ON coupons.id = coupon_usages.coupon_id").
		Where("coupon_usages.used_at >= ? AND coupon_usages.used_at < ?", rng.From, rng.To).
		Group("coupon_usages.coupon_id, coupons.code, coupons.type").
		Scan(&redemptions).Error; err != nil {
		return nil, err
	}

	type discountRow struct {
		CouponID       uint
		OrderCount     int64
		DiscountAmount float64
	}
	orderLevel := make([]discountRow, 0)
	if err := r.paidOrderBase(rng.From, rng.To).
		Select("orders.coupon_id as coupon_id, COUNT(*) as order_count, COALESCE(SUM(orders.discount_amount), 0) as discount_amount").
		Where("orders.coupon_id IS NOT NULL").
		Group("orders.coupon_id").
		Scan(&orderLevel).Error; err != nil {
		return nil, err
	}
	lineLevel := make([]discountRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select("order_items.coupon_id as coupon_id, COUNT(DISTINCT order_items.order_id) as order_count, COALESCE(SUM(order_items.coupon_discount), 0) as discount_amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ? AND orders.paid_at >= ? AND orders.paid_at < ?", PaidOrderStatuses(), rng.From, rng.To).
		Where("order_items.coupon_id IS NOT NULL").
		Group("order_items.coupon_id").
		Scan(&lineLevel).Error; err != nil {
		return nil, err
	}

	index := make(map[uint]int, len(redemptions))
	for i := range redemptions {
		index[redemptions[i].CouponID] = i
	}
	merge := func(row discountRow) {
		pos, ok := index[row.CouponID]
		if !ok {
			redemptions = append(redemptions, ReportCouponRow{CouponID: row.CouponID})
			pos = len(redemptions) - 1
			index[row.CouponID] = pos
		}
		redemptions[pos].OrderCount += row.OrderCount
		redemptions[pos].DiscountAmount += row.DiscountAmount
	}
	for _, row := range orderLevel {
		merge(row)
	}
	for _, row := range lineLevel {
		merge(row)
	}

	missing := make([]uint, 0)
	for _, row := range redemptions {
		if row.Code == "" {
			missing = append(missing, row.CouponID)
		}
	}
	if len(missing) > 0 {
		var coupons []models.Coupon
		if err := r.db.Select("id, code, type").Where("id IN ?", missing).Find(&coupons).Error; err != nil {
			return nil, err
		}
		for _, coupon := range coupons {
			pos := index[coupon.ID]
			redemptions[pos].Code = coupon.Code
			redemptions[pos].Type = coupon.Type
		}
	}

	sort.Slice(redemptions, func(i, j int) bool {
		a, b := redemptions[i], redemptions[j]
		if a.Redemptions != b.Redemptions {
			return a.Redemptions > b.Redemptions
		}
		if a.DiscountAmount != b.DiscountAmount {
			return a.DiscountAmount > b.DiscountAmount
		}
		return a.CouponID < b.CouponID
	})
	limit := normalizeReportLimit(rng.Limit)
	if len(redemptions) > limit {
		redemptions = redemptions[:limit]
	}
	return redemptions, nil
}
