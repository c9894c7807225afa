package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-backend/internal/database/memdb"
	"pos-backend/internal/models"
	"pos-backend/internal/timeutil"
)

type seed struct {
	store *memdb.Store
	t     *testing.T
}

func (s seed) estimate(id, staff string, total float64, converted bool, at time.Time) {
	s.t.Helper()
	err := s.store.Estimates().Insert(context.Background(), &models.Estimate{
		EstimateID:         id,
		Bill:               models.Bill{CustomerName: "c", SaleBy: staff, Total: total},
		CreatedAt:          models.NewTimestamp(at),
		IsConvertedToOrder: converted,
	})
	if err != nil {
		s.t.Fatalf("insert estimate: %v", err)
	}
}

func (s seed) order(id, staff, mode string, total float64, at time.Time) {
	s.t.Helper()
	err := s.store.Orders().Insert(context.Background(), &models.Order{
		OrderID:     id,
		Bill:        models.Bill{CustomerName: "c", SaleBy: staff, Total: total},
		PaymentMode: models.PaymentMode(mode),
		CreatedAt:   models.NewTimestamp(at),
	})
	if err != nil {
		s.t.Fatalf("insert order: %v", err)
	}
}

func reportService(store *memdb.Store, now time.Time) *ReportService {
	svc := NewReportService(newDeps(store, nil))
	svc.now = func() time.Time { return now }
	return svc
}

func TestTodayReportPaymentBreakdown(t *testing.T) {
	store := memdb.New()
	s := seed{store: store, t: t}
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, timeutil.Zone)

	s.order("O1", "Asha", "Cash", 100, now.Add(-time.Hour))
	s.order("O2", "Asha", "Card", 200, now.Add(-2*time.Hour))
	s.order("O3", "Ravi", "UPI", 50, now.Add(-3*time.Hour))
	s.order("O4", "Ravi", "Foo", 10, now.Add(-4*time.Hour))
	s.order("O5", "Ravi", "", 7, time.Date(2024, 3, 10, 0, 0, 0, 0, timeutil.Zone))
	s.order("YESTERDAY", "Ravi", "Cash", 999, time.Date(2024, 3, 9, 23, 59, 0, 0, timeutil.Zone))
	s.estimate("E1", "Asha", 30, false, now)
	s.estimate("E2", "Asha", 20, true, now.Add(-time.Minute))

	report, err := reportService(store, now).Today(context.Background())
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if report.Date != "2024-03-10" {
		t.Fatalf("unexpected date %q", report.Date)
	}

	breakdown := report.Orders.PaymentBreakdown
	if len(breakdown) != len(models.PaymentBuckets) {
		t.Fatalf("every bucket must be present, got %v", breakdown)
	}
	for bucket, want := range map[string]BucketTotal{
		"cash":  {Count: 1, Amount: 100},
		"card":  {Count: 1, Amount: 200},
		"upi":   {Count: 1, Amount: 50},
		"other": {Count: 2, Amount: 17},
	} {
		if breakdown[bucket] != want {
			t.Fatalf("bucket %s: expected %+v, got %+v", bucket, want, breakdown[bucket])
		}
	}

	if report.Orders.Count != 5 || report.Orders.TotalAmount != 367 {
		t.Fatalf("unexpected orders section %+v", report.Orders)
	}
	if report.Estimates.ConversionBreakdown != (ConversionBreakdown{Pending: 1, Converted: 1}) {
		t.Fatalf("unexpected conversion breakdown %+v", report.Estimates.ConversionBreakdown)
	}
	if report.Summary.TotalTransactions != 7 || report.Summary.TotalRevenue != 417 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
}

func TestDateRangeReport(t *testing.T) {
	store := memdb.New()
	s := seed{store: store, t: t}
	s.order("IN-START", "Asha", "Cash", 10, time.Date(2024, 3, 1, 0, 0, 0, 0, timeutil.Zone))
	s.order("IN-END", "Asha", "Cash", 20, time.Date(2024, 3, 5, 23, 30, 0, 0, timeutil.Zone))
	s.order("OUT", "Asha", "Cash", 40, time.Date(2024, 3, 6, 0, 0, 0, 0, timeutil.Zone))

	svc := reportService(store, time.Now())
	ctx := context.Background()

	report, err := svc.DateRange(ctx, "2024-03-01", "2024-03-05")
	if err != nil {
		t.Fatalf("DateRange returned error: %v", err)
	}
	if report.Orders.Count != 2 || report.Orders.TotalAmount != 30 {
		t.Fatalf("unexpected orders section %+v", report.Orders)
	}
	if report.DateRange.Start != "2024-03-01" || report.DateRange.End != "2024-03-05" {
		t.Fatalf("unexpected date range %+v", report.DateRange)
	}

	for _, bounds := range [][2]string{{"2024-03-05", "2024-03-01"}, {"", "2024-03-01"}, {"soon", "2024-03-01"}} {
		if _, err := svc.DateRange(ctx, bounds[0], bounds[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("DateRange(%q, %q): expected ErrInvalidInput, got %v", bounds[0], bounds[1], err)
		}
	}
}

func TestMonthlyReportCoversLastDay(t *testing.T) {
	store := memdb.New()
	s := seed{store: store, t: t}
	s.order("FIRST", "Asha", "Cash", 10, time.Date(2023, 12, 1, 0, 0, 0, 0, timeutil.Zone))
	s.order("LAST", "Asha", "Cash", 20, time.Date(2023, 12, 31, 22, 0, 0, 0, timeutil.Zone))
	s.order("LAST-2", "Asha", "Cash", 5, time.Date(2023, 12, 31, 23, 0, 0, 0, timeutil.Zone))
	s.order("NEXT", "Asha", "Cash", 40, time.Date(2024, 1, 1, 0, 0, 0, 0, timeutil.Zone))
	s.estimate("E1", "Asha", 15, false, time.Date(2023, 12, 15, 12, 0, 0, 0, timeutil.Zone))

	svc := reportService(store, time.Now())
	report, err := svc.Monthly(context.Background(), 2023, 12)
	if err != nil {
		t.Fatalf("Monthly returned error: %v", err)
	}
	if report.Summary.TotalOrders != 3 || report.Summary.TotalOrdersAmount != 35 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if report.Summary.TotalEstimates != 1 || report.Summary.TotalEstimatesAmount != 15 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if got := report.DailyBreakdown.Orders["2023-12-31"]; got != (DayTotal{Count: 2, Total: 25}) {
		t.Fatalf("unexpected last-day bucket %+v", got)
	}
	if report.Period.StartDate != "2023-12-01T00:00:00+05:30" || report.Period.EndDate != "2023-12-31T00:00:00+05:30" {
		t.Fatalf("unexpected period %+v", report.Period)
	}

	if _, err := svc.Monthly(context.Background(), 2024, 13); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStaffPerformanceRanksByRevenue(t *testing.T) {
	store := memdb.New()
	s := seed{store: store, t: t}
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, timeutil.Zone)
	s.estimate("E1", "Asha", 100, false, at)
	s.order("O1", "Asha", "Cash", 50, at)
	s.order("O2", "Ravi", "Card", 500, at)
	s.estimate("E2", "", 5, false, at)

	report, err := reportService(store, at).StaffPerformance(context.Background())
	if err != nil {
		t.Fatalf("StaffPerformance returned error: %v", err)
	}
	if len(report.StaffPerformance) != 3 {
		t.Fatalf("expected 3 staff rows, got %+v", report.StaffPerformance)
	}
	ravi, asha, unknown := report.StaffPerformance[0], report.StaffPerformance[1], report.StaffPerformance[2]
	if ravi.StaffName != "Ravi" || asha.StaffName != "Asha" || unknown.StaffName != "Unknown" {
		t.Fatalf("unexpected ranking %+v", report.StaffPerformance)
	}
	if asha.EstimatesCount != 1 || asha.OrdersCount != 1 || asha.TotalTransactions != 2 || asha.TotalRevenue != 150 {
		t.Fatalf("unexpected row %+v", asha)
	}
	if report.Summary != (StaffSummary{TotalStaff: 3, TotalEstimates: 2, TotalOrders: 2, TotalRevenue: 655}) {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
}

func TestSingleCollectionReports(t *testing.T) {
	store := memdb.New()
	s := seed{store: store, t: t}
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, timeutil.Zone)
	s.estimate("E1", "Asha", 10.1, true, at)
	s.estimate("E2", "Asha", 20.2, false, at)
	s.order("O1", "Asha", "Cash", 1, at)
	s.order("O2", "Asha", "", 2, at)
	s.order("O3", "Asha", "Paytm", 3, at)

	svc := reportService(store, at)
	estimates, err := svc.EstimatesOnly(context.Background())
	if err != nil {
		t.Fatalf("EstimatesOnly returned error: %v", err)
	}
	if estimates.Estimates.TotalCount != 2 || estimates.Estimates.TotalAmount != 30.3 {
		t.Fatalf("unexpected estimates report %+v", estimates.Estimates)
	}
	if estimates.Estimates.ConversionBreakdown != (ConversionBreakdown{Pending: 1, Converted: 1}) {
		t.Fatalf("unexpected conversion breakdown %+v", estimates.Estimates.ConversionBreakdown)
	}

	orders, err := svc.OrdersOnly(context.Background())
	if err != nil {
		t.Fatalf("OrdersOnly returned error: %v", err)
	}
	want := map[string]int{"Cash": 2, "Paytm": 1}
	if len(orders.Orders.PaymentBreakdown) != len(want) {
		t.Fatalf("unexpected breakdown %v", orders.Orders.PaymentBreakdown)
	}
	for mode, count := range want {
		if orders.Orders.PaymentBreakdown[mode] != count {
			t.Fatalf("mode %s: expected %d, got %v", mode, count, orders.Orders.PaymentBreakdown)
		}
	}
}
