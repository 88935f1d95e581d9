package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/repository"
)

type stubReportRepo struct {
	calls int32
}

func (r *stubReportRepo) GetOverview(startAt, endAt time.Time) (repository.ReportOverviewRow, error) {
	atomic.AddInt32(&r.calls, 1)
	return repository.ReportOverviewRow{OrdersTotal: 3, PaidOrders: 2, PendingPaymentOrders: 1, GrossSales: 120, DiscountTotal: 20, TaxTotal: 10, NetSales: 110}, nil
}

func (r *stubReportRepo) GetStockStats(lowStockThreshold int64) (repository.ReportStockStatsRow, error) {
	atomic.AddInt32(&r.calls, 1)
	return repository.ReportStockStatsRow{OutOfStockProducts: 1}, nil
}

func (r *stubReportRepo) SalesByDay(rng repository.ReportRange) ([]repository.ReportSalesDayRow, error) {
	atomic.AddInt32(&r.calls, 1)
	return []repository.ReportSalesDayRow{{Day: "2026-03-10", OrderCount: 2, GrossAmount: 120, DiscountTotal: 20, TaxAmount: 10, NetAmount: 110}}, nil
}

func (r *stubReportRepo) TaxByDay(rng repository.ReportRange) ([]repository.ReportTaxDayRow, error) {
	return nil, nil
}

func (r *stubReportRepo) TopCustomers(rng repository.ReportRange) ([]repository.ReportCustomerRow, error) {
	return []repository.ReportCustomerRow{{UserID: 7, Email: "a,b@example.com", OrderCount: 1, TotalSpent: 99.5}}, nil
}

func (r *stubReportRepo) NewCustomersByDay(rng repository.ReportRange) ([]repository.ReportNewCustomerDayRow, error) {
	return []repository.ReportNewCustomerDayRow{{Day: "2026-03-10", Users: 4}}, nil
}

func (r *stubReportRepo) TopProducts(rng repository.ReportRange) ([]repository.ReportProductRow, error) {
	return nil, errors.New("boom")
}

func (r *stubReportRepo) CouponPerformance(rng repository.ReportRange) ([]repository.ReportCouponRow, error) {
	return nil, nil
}

func TestReportOverviewAggregates(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, nil)

	overview, err := svc.Overview(context.Background(), ReportQuery{Range: "30d", ForceRefresh: true})
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("overview should run 3 queries, got %d", repo.calls)
	}
	if overview.KPI.NetSales != "110.00" || overview.KPI.GrossSales != "120.00" {
		t.Fatalf("unexpected kpi %+v", overview.KPI)
	}
	if overview.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("currency want %s got %s", constants.SiteCurrencyDefault, overview.Currency)
	}
	if len(overview.Trend) != 1 || len(overview.Alerts) != 2 {
		t.Fatalf("want 1 trend point and 2 alerts, got %d/%d", len(overview.Trend), len(overview.Alerts))
	}
}

func TestReportCustomersCSV(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, nil)
	result, err := svc.Report(context.Background(), constants.ReportCustomers, ReportQuery{Range: "7d"})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var buf bytes.Buffer
	if err := result.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv failed: %v", err)
	}
	want := "user_id,email,display_name,orders,total_spent,last_order_at\n7,\"a,b@example.com\",,1,99.50,\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestReportErrors(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, nil)
	if _, err := svc.Report(context.Background(), "refunds", ReportQuery{}); !errors.Is(err, ErrReportTypeInvalid) {
		t.Fatalf("unknown kind want ErrReportTypeInvalid got %v", err)
	}
	if _, err := svc.Report(context.Background(), constants.ReportProducts, ReportQuery{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("repository error should propagate, got %v", err)
	}
	if _, err := svc.Report(context.Background(), constants.ReportSales, ReportQuery{Range: "custom"}); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("custom without bounds want ErrDashboardRangeInvalid got %v", err)
	}
	if _, err := NormalizeExportFormat("xlsx"); !errors.Is(err, ErrExportFormatInvalid) {
		t.Fatalf("xlsx want ErrExportFormatInvalid got %v", err)
	}
}

func TestResolveReportWindowCustomInclusive(t *testing.T) {
	from := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	window, err := resolveReportWindow(ReportQuery{Range: "custom", From: &from, To: &to}, time.Now())
	if err != nil {
		t.Fatalf("resolve window failed: %v", err)
	}
	if !window.startAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) || !window.endAt.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window %v - %v", window.startAt, window.endAt)
	}
}
