package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	reportCacheTTL        = 45 * time.Second
	reportCustomMaxDays   = 366
	reportLowStockDefault = 5
)

// ReportService 经营报表服务
type ReportService struct {
	repo           repository.ReportRepository
	settingService *SettingService
}

// NewReportService 创建报表服务
func NewReportService(repo repository.ReportRepository, settingService *SettingService) *ReportService {
	return &ReportService{repo: repo, settingService: settingService}
}

// ReportQuery 报表查询条件
type ReportQuery struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	Limit        int
	ForceRefresh bool
}

// DashboardOverview 仪表盘总览
type DashboardOverview struct {
	Range    string                         `json:"range"`
	From     string                         `json:"from"`
	To       string                         `json:"to"`
	Timezone string                         `json:"timezone"`
	Currency string                         `json:"currency"`
	KPI      DashboardKPI                   `json:"kpi"`
	Trend    []repository.ReportSalesDayRow `json:"trend"`
	Alerts   []DashboardAlert               `json:"alerts"`
}

// DashboardKPI 核心指标
type DashboardKPI struct {
	OrdersTotal          int64  `json:"orders_total"`
	PaidOrders           int64  `json:"paid_orders"`
	CompletedOrders      int64  `json:"completed_orders"`
	PendingPaymentOrders int64  `json:"pending_payment_orders"`
	CanceledOrders       int64  `json:"canceled_orders"`
	GrossSales           string `json:"gross_sales"`
	DiscountTotal        string `json:"discount_total"`
	TaxTotal             string `json:"tax_total"`
	NetSales             string `json:"net_sales"`
	NewUsers             int64  `json:"new_users"`
	ActiveProducts       int64  `json:"active_products"`
	OutOfStockProducts   int64  `json:"out_of_stock_products"`
	LowStockProducts     int64  `json:"low_stock_products"`
	CouponRedemptions    int64  `json:"coupon_redemptions"`
}

// DashboardAlert 告警项
type DashboardAlert struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// ReportResult 报表结果（JSON 与 CSV 共用）
type ReportResult struct {
	Kind    string      `json:"kind"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Data    interface{} `json:"data"`
	Columns []string    `json:"-"`
	Rows    [][]string  `json:"-"`
}

// CustomersReport 顾客报表
type CustomersReport struct {
	TopSpenders  []repository.ReportCustomerRow       `json:"top_spenders"`
	NewCustomers []repository.ReportNewCustomerDayRow `json:"new_customers"`
}

type reportWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// Overview 仪表盘总览，各项统计并发查询
func (s *ReportService) Overview(ctx context.Context, query ReportQuery) (*DashboardOverview, error) {
	window, err := resolveReportWindow(query, time.Now())
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf("report:overview:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !query.ForceRefresh {
		var cached DashboardOverview
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	var (
		overview repository.ReportOverviewRow
		stock    repository.ReportStockStatsRow
		trend    []repository.ReportSalesDayRow
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := s.repo.GetOverview(window.startAt, window.endAt)
		overview = row
		return err
	})
	g.Go(func() error {
		row, err := s.repo.GetStockStats(reportLowStockDefault)
		stock = row
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.SalesByDay(repository.ReportRange{From: window.startAt, To: window.endAt})
		trend = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	currency, err := s.settingService.GetSiteCurrency(constants.SiteCurrencyDefault)
	if err != nil {
		currency = constants.SiteCurrencyDefault
	}
	result := &DashboardOverview{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Currency: currency,
		KPI: DashboardKPI{
			OrdersTotal:          overview.OrdersTotal,
			PaidOrders:           overview.PaidOrders,
			CompletedOrders:      overview.CompletedOrders,
			PendingPaymentOrders: overview.PendingPaymentOrders,
			CanceledOrders:       overview.CanceledOrders,
			GrossSales:           formatAmount(overview.GrossSales),
			DiscountTotal:        formatAmount(overview.DiscountTotal),
			TaxTotal:             formatAmount(overview.TaxTotal),
			NetSales:             formatAmount(overview.NetSales),
			NewUsers:             overview.NewUsers,
			ActiveProducts:       overview.ActiveProducts,
			OutOfStockProducts:   stock.OutOfStockProducts,
			LowStockProducts:     stock.LowStockProducts,
			CouponRedemptions:    overview.CouponRedemptions,
		},
		Trend:  trend,
		Alerts: buildDashboardAlerts(overview, stock),
	}
	if err := cache.SetJSON(ctx, cacheKey, result, reportCacheTTL); err != nil {
		logger.Debugw("report_overview_cache_set_failed", "error", err)
	}
	return result, nil
}

// Report 按维度生成报表
func (s *ReportService) Report(ctx context.Context, kind string, query ReportQuery) (*ReportResult, error) {
	window, err := resolveReportWindow(query, time.Now())
	if err != nil {
		return nil, err
	}
	rng := repository.ReportRange{From: window.startAt, To: window.endAt, Limit: query.Limit}
	result := &ReportResult{
		Kind: kind,
		From: window.startAt.Format(time.RFC3339),
		To:   window.endAt.Add(-time.Second).Format(time.RFC3339),
	}

	switch kind {
	case constants.ReportSales:
		rows, err := s.repo.SalesByDay(rng)
		if err != nil {
			return nil, err
		}
		result.Data = rows
		result.Columns = []string{"day", "orders", "gross_amount", "discount_amount", "tax_amount", "net_amount"}
		for _, row := range rows {
			result.Rows = append(result.Rows, []string{row.Day, itoa(row.OrderCount), formatAmount(row.GrossAmount), formatAmount(row.DiscountTotal), formatAmount(row.TaxAmount), formatAmount(row.NetAmount)})
		}
	case constants.ReportTax:
		rows, err := s.repo.TaxByDay(rng)
		if err != nil {
			return nil, err
		}
		result.Data = rows
		result.Columns = []string{"day", "orders", "taxable_base", "tax_amount"}
		for _, row := range rows {
			result.Rows = append(result.Rows, []string{row.Day, itoa(row.OrderCount), formatAmount(row.TaxableBase), formatAmount(row.TaxAmount)})
		}
	case constants.ReportCustomers:
		report := CustomersReport{}
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			rows, err := s.repo.TopCustomers(rng)
			report.TopSpenders = rows
			return err
		})
		g.Go(func() error {
			rows, err := s.repo.NewCustomersByDay(rng)
			report.NewCustomers = rows
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		result.Data = report
		result.Columns = []string{"user_id", "email", "display_name", "orders", "total_spent", "last_order_at"}
		for _, row := range report.TopSpenders {
			result.Rows = append(result.Rows, []string{strconv.FormatUint(uint64(row.UserID), 10), row.Email, row.DisplayName, itoa(row.OrderCount), formatAmount(row.TotalSpent), row.LastOrderAt})
		}
	case constants.ReportProducts:
		rows, err := s.repo.TopProducts(rng)
		if err != nil {
			return nil, err
		}
		result.Data = rows
		result.Columns = []string{"product_id", "title", "paid_orders", "quantity", "revenue"}
		for _, row := range rows {
			result.Rows = append(result.Rows, []string{strconv.FormatUint(uint64(row.ProductID), 10), row.Title, itoa(row.PaidOrders), itoa(row.Quantity), formatAmount(row.Revenue)})
		}
	case constants.ReportCoupons:
		rows, err := s.repo.CouponPerformance(rng)
		if err != nil {
			return nil, err
		}
		result.Data = rows
		result.Columns = []string{"coupon_id", "code", "type", "redemptions", "orders", "discount_amount"}
		for _, row := range rows {
			result.Rows = append(result.Rows, []string{strconv.FormatUint(uint64(row.CouponID), 10), row.Code, row.Type, itoa(row.Redemptions), itoa(row.OrderCount), formatAmount(row.DiscountAmount)})
		}
	default:
		return nil, ErrReportTypeInvalid
	}
	return result, nil
}

// WriteCSV 以 CSV 输出报表
func (r *ReportResult) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(r.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(r.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// NormalizeExportFormat 校验导出格式
func NormalizeExportFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.ExportFormatJSON:
		return constants.ExportFormatJSON, nil
	case constants.ExportFormatCSV:
		return constants.ExportFormatCSV, nil
	default:
		return "", ErrExportFormatInvalid
	}
}

func resolveReportWindow(query ReportQuery, now time.Time) (reportWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(query.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}
	location := time.UTC
	timezone := strings.TrimSpace(query.Timezone)
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			return reportWindow{}, ErrDashboardRangeInvalid
		}
		location = parsed
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := reportWindow{rangeKey: rangeKey, timezone: location.String()}
	switch rangeKey {
	case "today":
		window.startAt = todayStart
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
	case "custom":
		if query.From == nil || query.To == nil {
			return reportWindow{}, ErrDashboardRangeInvalid
		}
		from := query.From.In(location)
		to := query.To.In(location)
		window.startAt = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, location)
		window.endAt = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, location).AddDate(0, 0, 1)
		if !window.endAt.After(window.startAt) || window.endAt.Sub(window.startAt) > reportCustomMaxDays*24*time.Hour {
			return reportWindow{}, ErrDashboardRangeInvalid
		}
		return window, nil
	default:
		return reportWindow{}, ErrDashboardRangeInvalid
	}
	window.endAt = todayStart.AddDate(0, 0, 1)
	return window, nil
}

func buildDashboardAlerts(overview repository.ReportOverviewRow, stock repository.ReportStockStatsRow) []DashboardAlert {
	alerts := make([]DashboardAlert, 0, 3)
	if stock.OutOfStockProducts > 0 {
		alerts = append(alerts, DashboardAlert{Type: "out_of_stock_products", Level: "error", Value: stock.OutOfStockProducts})
	}
	if stock.LowStockProducts > 0 {
		alerts = append(alerts, DashboardAlert{Type: "low_stock_products", Level: "warning", Value: stock.LowStockProducts})
	}
	if overview.PendingPaymentOrders > 0 {
		alerts = append(alerts, DashboardAlert{Type: "pending_payment_orders", Level: "info", Value: overview.PendingPaymentOrders})
	}
	return alerts
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
