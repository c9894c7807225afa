package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/timeutil"
)

const unknownStaff = "Unknown"

// ReportService computes read-only aggregates on demand. Nothing is cached;
// every call rescans the requested range.
type ReportService struct {
	estimates database.EstimateRepository
	orders    database.OrderRepository
	now       func() time.Time
}

func NewReportService(deps Deps) *ReportService {
	return &ReportService{
		estimates: deps.Estimates,
		orders:    deps.Orders,
		now:       timeutil.Now,
	}
}

type Summary struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	EstimatesCount    int     `json:"estimates_count"`
	OrdersCount       int     `json:"orders_count"`
}

type ConversionBreakdown struct {
	Pending   int `json:"pending"`
	Converted int `json:"converted"`
}

type BucketTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type EstimatesSection struct {
	Count               int                 `json:"count"`
	TotalAmount         float64             `json:"total_amount"`
	ConversionBreakdown ConversionBreakdown `json:"conversion_breakdown"`
	Items               []models.Estimate   `json:"items"`
}

type OrdersSection struct {
	Count            int                    `json:"count"`
	TotalAmount      float64                `json:"total_amount"`
	PaymentBreakdown map[string]BucketTotal `json:"payment_breakdown"`
	Items            []models.Order         `json:"items"`
}

// Activity is the body shared by the daily and date-range reports.
type Activity struct {
	Summary   Summary          `json:"summary"`
	Estimates EstimatesSection `json:"estimates"`
	Orders    OrdersSection    `json:"orders"`
}

type DailyReport struct {
	Date string `json:"date"`
	Activity
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RangeReport struct {
	DateRange DateRange `json:"date_range"`
	Activity
}

type Period struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type MonthlySummary struct {
	TotalEstimates       int     `json:"total_estimates"`
	TotalOrders          int     `json:"total_orders"`
	TotalEstimatesAmount float64 `json:"total_estimates_amount"`
	TotalOrdersAmount    float64 `json:"total_orders_amount"`
}

type DayTotal struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type DailyBreakdown struct {
	Estimates map[string]DayTotal `json:"estimates"`
	Orders    map[string]DayTotal `json:"orders"`
}

type MonthlyReport struct {
	Period         Period         `json:"period"`
	Summary        MonthlySummary `json:"summary"`
	DailyBreakdown DailyBreakdown `json:"daily_breakdown"`
}

type StaffPerformance struct {
	StaffName         string  `json:"staff_name"`
	EstimatesCount    int     `json:"estimates_count"`
	EstimatesTotal    float64 `json:"estimates_total"`
	OrdersCount       int     `json:"orders_count"`
	OrdersTotal       float64 `json:"orders_total"`
	TotalTransactions int     `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type StaffSummary struct {
	TotalStaff     int     `json:"total_staff"`
	TotalEstimates int     `json:"total_estimates"`
	TotalOrders    int     `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
}

type StaffReport struct {
	StaffPerformance []StaffPerformance `json:"staff_performance"`
	Summary          StaffSummary       `json:"summary"`
}

type EstimatesTotals struct {
	TotalCount          int                 `json:"total_count"`
	TotalAmount         float64             `json:"total_amount"`
	ConversionBreakdown ConversionBreakdown `json:"conversion_breakdown"`
	Items               []models.Estimate   `json:"items"`
}

type EstimatesReport struct {
	Estimates EstimatesTotals `json:"estimates"`
}

// OrdersTotals counts payment modes by their stored spelling.
type OrdersTotals struct {
	TotalCount       int            `json:"total_count"`
	TotalAmount      float64        `json:"total_amount"`
	PaymentBreakdown map[string]int `json:"payment_breakdown"`
	Items            []models.Order `json:"items"`
}

type OrdersReport struct {
	Orders OrdersTotals `json:"orders"`
}

// tally accumulates a count and an exact money sum.
type tally struct {
	count int
	sum   decimal.Decimal
}

func (t *tally) add(amount float64) {
	t.count++
	t.sum = t.sum.Add(decimal.NewFromFloat(amount))
}

func (t tally) amount() float64 {
	return t.sum.InexactFloat64()
}

// Today reports the civil day containing the current time.
func (s *ReportService) Today(ctx context.Context) (DailyReport, error) {
	now := s.now()
	start, end := timeutil.DayBounds(now)
	activity, err := s.activity(ctx, database.Filter{From: start, To: end})
	if err != nil {
		return DailyReport{}, fmt.Errorf("daily report: %w", err)
	}
	return DailyReport{Date: timeutil.DateKey(now), Activity: activity}, nil
}

// DateRange reports [start, end]. A date-only end covers that whole day.
func (s *ReportService) DateRange(ctx context.Context, startRaw, endRaw string) (RangeReport, error) {
	if strings.TrimSpace(startRaw) == "" || strings.TrimSpace(endRaw) == "" {
		return RangeReport{}, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	start, err := timeutil.ParseRangeDate(startRaw, false)
	if err != nil {
		return RangeReport{}, fmt.Errorf("%w: start_date: %v", ErrInvalidInput, err)
	}
	end, err := timeutil.ParseRangeDate(endRaw, true)
	if err != nil {
		return RangeReport{}, fmt.Errorf("%w: end_date: %v", ErrInvalidInput, err)
	}
	if start.After(end) {
		return RangeReport{}, fmt.Errorf("%w: start_date is after end_date", ErrInvalidInput)
	}

	activity, err := s.activity(ctx, database.Filter{From: start, To: end})
	if err != nil {
		return RangeReport{}, fmt.Errorf("date range report: %w", err)
	}
	return RangeReport{DateRange: DateRange{Start: startRaw, End: endRaw}, Activity: activity}, nil
}

func (s *ReportService) activity(ctx context.Context, filter database.Filter) (Activity, error) {
	estimates, err := s.estimates.List(ctx, filter)
	if err != nil {
		return Activity{}, err
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return Activity{}, err
	}

	var estimateTally, orderTally tally
	var conversion ConversionBreakdown
	for i := range estimates {
		estimates[i].Status = estimates[i].EffectiveStatus()
		estimateTally.add(estimates[i].Total)
		if estimates[i].IsConvertedToOrder {
			conversion.Converted++
		} else {
			conversion.Pending++
		}
	}

	buckets := make(map[string]*tally, len(models.PaymentBuckets))
	for _, name := range models.PaymentBuckets {
		buckets[name] = &tally{}
	}
	for i := range orders {
		orderTally.add(orders[i].Total)
		// Bucket on the stored spelling so a missing mode lands in "other".
		buckets[models.PaymentBucket(string(orders[i].PaymentMode))].add(orders[i].Total)
		orders[i] = withDefaults(orders[i])
	}
	breakdown := make(map[string]BucketTotal, len(buckets))
	for name, t := range buckets {
		breakdown[name] = BucketTotal{Count: t.count, Amount: t.amount()}
	}

	return Activity{
		Summary: Summary{
			TotalTransactions: estimateTally.count + orderTally.count,
			TotalRevenue:      estimateTally.sum.Add(orderTally.sum).InexactFloat64(),
			EstimatesCount:    estimateTally.count,
			OrdersCount:       orderTally.count,
		},
		Estimates: EstimatesSection{
			Count:               estimateTally.count,
			TotalAmount:         estimateTally.amount(),
			ConversionBreakdown: conversion,
			Items:               estimates,
		},
		Orders: OrdersSection{
			Count:            orderTally.count,
			TotalAmount:      orderTally.amount(),
			PaymentBreakdown: breakdown,
			Items:            orders,
		},
	}, nil
}

// Monthly buckets a civil month by day.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (MonthlyReport, error) {
	start, next, err := timeutil.MonthBounds(year, month)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	filter := database.Filter{From: start, Before: next}

	estimates, err := s.estimates.List(ctx, filter)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}

	var estimateTally, orderTally tally
	estimateDays := map[string]*tally{}
	for _, estimate := range estimates {
		estimateTally.add(estimate.Total)
		dayTally(estimateDays, estimate.CreatedAt.DateKey()).add(estimate.Total)
	}
	orderDays := map[string]*tally{}
	for _, order := range orders {
		orderTally.add(order.Total)
		dayTally(orderDays, order.CreatedAt.DateKey()).add(order.Total)
	}

	return MonthlyReport{
		Period: Period{
			Year:      year,
			Month:     month,
			StartDate: start.Format(time.RFC3339),
			EndDate:   next.AddDate(0, 0, -1).Format(time.RFC3339),
		},
		Summary: MonthlySummary{
			TotalEstimates:       estimateTally.count,
			TotalOrders:          orderTally.count,
			TotalEstimatesAmount: estimateTally.amount(),
			TotalOrdersAmount:    orderTally.amount(),
		},
		DailyBreakdown: DailyBreakdown{
			Estimates: dayTotals(estimateDays),
			Orders:    dayTotals(orderDays),
		},
	}, nil
}

func dayTally(days map[string]*tally, key string) *tally {
	t, ok := days[key]
	if !ok {
		t = &tally{}
		days[key] = t
	}
	return t
}

func dayTotals(days map[string]*tally) map[string]DayTotal {
	out := make(map[string]DayTotal, len(days))
	for key, t := range days {
		out[key] = DayTotal{Count: t.count, Total: t.amount()}
	}
	return out
}

// StaffPerformance ranks every staff member by combined revenue over all
// estimates and orders.
func (s *ReportService) StaffPerformance(ctx context.Context) (StaffReport, error) {
	estimates, err := s.estimates.List(ctx, database.Filter{})
	if err != nil {
		return StaffReport{}, fmt.Errorf("staff performance report: %w", err)
	}
	orders, err := s.orders.List(ctx, database.Filter{})
	if err != nil {
		return StaffReport{}, fmt.Errorf("staff performance report: %w", err)
	}

	type staffTally struct{ estimates, orders tally }
	staff := map[string]*staffTally{}
	get := func(name string) *staffTally {
		if strings.TrimSpace(name) == "" {
			name = unknownStaff
		}
		t, ok := staff[name]
		if !ok {
			t = &staffTally{}
			staff[name] = t
		}
		return t
	}
	for _, estimate := range estimates {
		get(estimate.SaleBy).estimates.add(estimate.Total)
	}
	for _, order := range orders {
		get(order.SaleBy).orders.add(order.Total)
	}

	report := StaffReport{StaffPerformance: make([]StaffPerformance, 0, len(staff))}
	revenue := decimal.Zero
	for name, t := range staff {
		combined := t.estimates.sum.Add(t.orders.sum)
		revenue = revenue.Add(combined)
		report.StaffPerformance = append(report.StaffPerformance, StaffPerformance{
			StaffName:         name,
			EstimatesCount:    t.estimates.count,
			EstimatesTotal:    t.estimates.amount(),
			OrdersCount:       t.orders.count,
			OrdersTotal:       t.orders.amount(),
			TotalTransactions: t.estimates.count + t.orders.count,
			TotalRevenue:      combined.InexactFloat64(),
		})
		report.Summary.TotalEstimates += t.estimates.count
		report.Summary.TotalOrders += t.orders.count
	}
	sort.Slice(report.StaffPerformance, func(i, j int) bool {
		a, b := report.StaffPerformance[i], report.StaffPerformance[j]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		return a.StaffName < b.StaffName
	})
	report.Summary.TotalStaff = len(report.StaffPerformance)
	report.Summary.TotalRevenue = revenue.InexactFloat64()
	return report, nil
}

func (s *ReportService) EstimatesOnly(ctx context.Context) (EstimatesReport, error) {
	estimates, err := s.estimates.List(ctx, database.Filter{})
	if err != nil {
		return EstimatesReport{}, fmt.Errorf("estimates report: %w", err)
	}

	var total tally
	var conversion ConversionBreakdown
	for i := range estimates {
		estimates[i].Status = estimates[i].EffectiveStatus()
		total.add(estimates[i].Total)
		if estimates[i].IsConvertedToOrder {
			conversion.Converted++
		} else {
			conversion.Pending++
		}
	}
	return EstimatesReport{Estimates: EstimatesTotals{
		TotalCount:          total.count,
		TotalAmount:         total.amount(),
		ConversionBreakdown: conversion,
		Items:               estimates,
	}}, nil
}

func (s *ReportService) OrdersOnly(ctx context.Context) (OrdersReport, error) {
	orders, err := s.orders.List(ctx, database.Filter{})
	if err != nil {
		return OrdersReport{}, fmt.Errorf("orders report: %w", err)
	}

	var total tally
	modes := map[string]int{}
	for i := range orders {
		orders[i] = withDefaults(orders[i])
		total.add(orders[i].Total)
		modes[string(orders[i].PaymentMode)]++
	}
	return OrdersReport{Orders: OrdersTotals{
		TotalCount:       total.count,
		TotalAmount:      total.amount(),
		PaymentBreakdown: modes,
		Items:            orders,
	}}, nil
}
