package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sparesuite/backend/internal/domain/report"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// AnalyticsPeriod names the supported trailing windows
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// StatsCache caches assembled analytics payloads per tenant.
// Implemented by the redis cache layer; a nil cache disables caching.
type StatsCache interface {
	GetStats(ctx context.Context, tenantID uuid.UUID, out *PurchaseStatsResponse) (bool, error)
	SetStats(ctx context.Context, tenantID uuid.UUID, stats *PurchaseStatsResponse) error
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

// AnalyticsService assembles purchase analytics from raw aggregation
// queries. All ratio and growth derivation lives here.
type AnalyticsService struct {
	reportRepo report.PurchaseReportRepository
	cache      StatsCache
	now        func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(reportRepo report.PurchaseReportRepository) *AnalyticsService {
	return &AnalyticsService{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

// SetCache wires the stats cache
func (s *AnalyticsService) SetCache(cache StatsCache) {
	s.cache = cache
}

// SetClock overrides the time source, used by tests
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// CategoryShareResponse is one category with its share of the total
type CategoryShareResponse struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	OrderCount int64   `json:"order_count"`
	Percentage float64 `json:"percentage"`
}

// PurchaseStatsResponse is the dashboard summary card payload
type PurchaseStatsResponse struct {
	TotalOrders    int64                   `json:"total_orders"`
	TotalPurchases float64                 `json:"total_purchases"`
	SupplierCount  int64                   `json:"supplier_count"`
	PendingOrders  int64                   `json:"pending_orders"`
	MonthOrders    int64                   `json:"month_orders"`
	MonthPurchases float64                 `json:"month_purchases"`
	AvgOrderValue  float64                 `json:"avg_order_value"`
	TopCategories  []CategoryShareResponse `json:"top_categories"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// GetPurchaseStats returns the all-time summary plus the current-month
// slice and top five categories by spend. Served from cache when a fresh
// snapshot exists.
func (s *AnalyticsService) GetPurchaseStats(ctx context.Context, tenantID uuid.UUID) (*PurchaseStatsResponse, error) {
	if s.cache != nil {
		var cached PurchaseStatsResponse
		if hit, err := s.cache.GetStats(ctx, tenantID, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	allTime := report.PurchaseReportFilter{TenantID: tenantID}
	totals, err := s.reportRepo.GetLedgerTotals(ctx, allTime)
	if err != nil {
		return nil, err
	}

	monthStart := startOfMonth(s.now().UTC())
	monthFilter := report.PurchaseReportFilter{TenantID: tenantID, StartDate: &monthStart}
	monthTotals, err := s.reportRepo.GetLedgerTotals(ctx, monthFilter)
	if err != nil {
		return nil, err
	}

	categories, err := s.reportRepo.GetCategoryTotals(ctx, allTime)
	if err != nil {
		return nil, err
	}

	stats := &PurchaseStatsResponse{
		TotalOrders:    totals.TotalOrders,
		TotalPurchases: toFloat64(totals.TotalPurchases),
		SupplierCount:  totals.SupplierCount,
		PendingOrders:  totals.PendingOrders,
		MonthOrders:    monthTotals.TotalOrders,
		MonthPurchases: toFloat64(monthTotals.TotalPurchases),
		AvgOrderValue:  toFloat64(safeDiv(totals.TotalPurchases, decimal.NewFromInt(totals.TotalOrders))),
		TopCategories:  categoryShares(categories, totals.TotalPurchases, 5),
		GeneratedAt:    s.now().UTC(),
	}

	if s.cache != nil {
		_ = s.cache.SetStats(ctx, tenantID, stats)
	}
	return stats, nil
}

// DailyTrendResponse is one day bucket in the analytics window
type DailyTrendResponse struct {
	Date       string  `json:"date"` // 2006-01-02
	Amount     float64 `json:"amount"`
	OrderCount int64   `json:"order_count"`
}

// MonthlyTrendResponse is one month bucket with growth over the previous
type MonthlyTrendResponse struct {
	Month      string  `json:"month"` // 2006-01
	Amount     float64 `json:"amount"`
	OrderCount int64   `json:"order_count"`
	Growth     float64 `json:"growth"` // percent vs previous bucket
}

// SupplierRankResponse is one supplier in the top ranking
type SupplierRankResponse struct {
	Rank           int     `json:"rank"`
	SupplierID     string  `json:"supplier_id"`
	SupplierName   string  `json:"supplier_name"`
	TotalPurchases float64 `json:"total_purchases"`
	TotalOrders    int64   `json:"total_orders"`
	Percentage     float64 `json:"percentage"`
}

// TrendBucketResponse is one day bucket with growth over the previous day
type TrendBucketResponse struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Growth float64 `json:"growth"` // percent vs previous bucket
}

// PurchaseAnalyticsResponse is the full analytics payload for one window
type PurchaseAnalyticsResponse struct {
	Period         string                  `json:"period"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        time.Time               `json:"end_date"`
	Totals         PurchaseStatsTotals     `json:"totals"`
	DailyTrend     []DailyTrendResponse    `json:"daily_trend"`
	MonthlyTrend   []MonthlyTrendResponse  `json:"monthly_trend"`
	PurchaseTrends []TrendBucketResponse   `json:"purchase_trends"`
	TopSuppliers   []SupplierRankResponse  `json:"top_suppliers"`
	Categories     []CategoryShareResponse `json:"categories"`
}

// PurchaseStatsTotals is the windowed totals block inside analytics
type PurchaseStatsTotals struct {
	TotalOrders    int64   `json:"total_orders"`
	TotalPurchases float64 `json:"total_purchases"`
	SupplierCount  int64   `json:"supplier_count"`
	PendingOrders  int64   `json:"pending_orders"`
	AvgOrderValue  float64 `json:"avg_order_value"`
}

// GetPurchaseAnalytics returns trends, rankings and category shares for a
// trailing window. Unknown period names are a caller error.
func (s *AnalyticsService) GetPurchaseAnalytics(ctx context.Context, tenantID uuid.UUID, period string) (*PurchaseAnalyticsResponse, error) {
	end := s.now().UTC()
	start, err := resolvePeriodStart(end, period)
	if err != nil {
		return nil, err
	}

	filter := report.PurchaseReportFilter{TenantID: tenantID, StartDate: &start, EndDate: &end}

	totals, err := s.reportRepo.GetLedgerTotals(ctx, filter)
	if err != nil {
		return nil, err
	}
	daily, err := s.reportRepo.GetDailyTotals(ctx, filter)
	if err != nil {
		return nil, err
	}
	monthly, err := s.reportRepo.GetMonthlyTotals(ctx, filter)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.reportRepo.GetSupplierTotals(ctx, filter, 10)
	if err != nil {
		return nil, err
	}
	categories, err := s.reportRepo.GetCategoryTotals(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Category shares are relative to the summed item amounts, not the
	// ledger grand total: charges and discounts carry no category.
	categoryTotal := decimal.Zero
	for _, c := range categories {
		categoryTotal = categoryTotal.Add(c.Amount)
	}

	return &PurchaseAnalyticsResponse{
		Period:    period,
		StartDate: start,
		EndDate:   end,
		Totals: PurchaseStatsTotals{
			TotalOrders:    totals.TotalOrders,
			TotalPurchases: toFloat64(totals.TotalPurchases),
			SupplierCount:  totals.SupplierCount,
			PendingOrders:  totals.PendingOrders,
			AvgOrderValue:  toFloat64(safeDiv(totals.TotalPurchases, decimal.NewFromInt(totals.TotalOrders))),
		},
		DailyTrend:     dailyTrend(daily),
		MonthlyTrend:   monthlyTrend(monthly),
		PurchaseTrends: purchaseTrends(daily),
		TopSuppliers:   supplierRanks(suppliers, totals.TotalPurchases),
		Categories:     categoryShares(categories, categoryTotal, 0),
	}, nil
}

// SupplierReportRow is one supplier line in the supplier report
type SupplierReportRow struct {
	SupplierID        string    `json:"supplier_id"`
	SupplierName      string    `json:"supplier_name"`
	TotalOrders       int64     `json:"total_orders"`
	TotalPurchases    float64   `json:"total_purchases"`
	AvgOrderValue     float64   `json:"avg_order_value"`
	LastOrderDate     time.Time `json:"last_order_date"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	Rating            string    `json:"rating"`
}

// SupplierReportResponse is the per-supplier rollup of the ledger
type SupplierReportResponse struct {
	StartDate *time.Time          `json:"start_date,omitempty"`
	EndDate   *time.Time          `json:"end_date,omitempty"`
	Suppliers []SupplierReportRow `json:"suppliers"`
}

// GetSupplierReport returns every supplier's rollup within the window,
// ordered by spend
func (s *AnalyticsService) GetSupplierReport(ctx context.Context, tenantID uuid.UUID, startDate, endDate *time.Time) (*SupplierReportResponse, error) {
	filter := report.PurchaseReportFilter{TenantID: tenantID, StartDate: startDate, EndDate: endDate}
	suppliers, err := s.reportRepo.GetSupplierTotals(ctx, filter, 0)
	if err != nil {
		return nil, err
	}

	rows := make([]SupplierReportRow, len(suppliers))
	for i, sup := range suppliers {
		rows[i] = SupplierReportRow{
			SupplierID:        sup.SupplierID.String(),
			SupplierName:      sup.SupplierName,
			TotalOrders:       sup.TotalOrders,
			TotalPurchases:    toFloat64(sup.TotalPurchases),
			AvgOrderValue:     toFloat64(safeDiv(sup.TotalPurchases, decimal.NewFromInt(sup.TotalOrders))),
			LastOrderDate:     sup.LastOrderDate,
			OutstandingAmount: toFloat64(sup.OutstandingAmount),
			Rating:            supplierRating(sup),
		}
	}
	return &SupplierReportResponse{StartDate: startDate, EndDate: endDate, Suppliers: rows}, nil
}

// CategorySpendResponse is the per-category spend breakdown
type CategorySpendResponse struct {
	StartDate  *time.Time              `json:"start_date,omitempty"`
	EndDate    *time.Time              `json:"end_date,omitempty"`
	TotalSpend float64                 `json:"total_spend"`
	Categories []CategoryShareResponse `json:"categories"`
}

// GetCategorySpend returns summed item spend per category with each
// category's share of the window total
func (s *AnalyticsService) GetCategorySpend(ctx context.Context, tenantID uuid.UUID, startDate, endDate *time.Time) (*CategorySpendResponse, error) {
	filter := report.PurchaseReportFilter{TenantID: tenantID, StartDate: startDate, EndDate: endDate}
	categories, err := s.reportRepo.GetCategoryTotals(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Amount)
	}

	return &CategorySpendResponse{
		StartDate:  startDate,
		EndDate:    endDate,
		TotalSpend: toFloat64(total),
		Categories: categoryShares(categories, total, 0),
	}, nil
}

// resolvePeriodStart maps a period name to the window start relative to
// the reference time. Week trails seven days; the calendar periods snap
// to the start of the current month, quarter or year.
func resolvePeriodStart(ref time.Time, period string) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return ref.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()), nil
	case PeriodQuarter:
		quarterStart := time.Month((int(ref.Month())-1)/3*3 + 1)
		return time.Date(ref.Year(), quarterStart, 1, 0, 0, 0, 0, ref.Location()), nil
	case PeriodYear:
		return time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location()), nil
	default:
		return time.Time{}, shared.NewInvalidArgument("Unknown analytics period " + period)
	}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dailyTrend(daily []report.DailyTotal) []DailyTrendResponse {
	out := make([]DailyTrendResponse, len(daily))
	for i, d := range daily {
		out[i] = DailyTrendResponse{
			Date:       d.Date.Format("2006-01-02"),
			Amount:     toFloat64(d.Amount),
			OrderCount: d.OrderCount,
		}
	}
	return out
}

// purchaseTrends derives day-over-day growth on the daily buckets. The
// first bucket, and any bucket following a zero day, reports zero growth.
func purchaseTrends(daily []report.DailyTotal) []TrendBucketResponse {
	out := make([]TrendBucketResponse, len(daily))
	for i, d := range daily {
		growth := decimal.Zero
		if i > 0 && !daily[i-1].Amount.IsZero() {
			growth = d.Amount.Sub(daily[i-1].Amount).
				Div(daily[i-1].Amount).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}
		out[i] = TrendBucketResponse{
			Date:   d.Date.Format("2006-01-02"),
			Amount: toFloat64(d.Amount),
			Growth: toFloat64(growth),
		}
	}
	return out
}

// monthlyTrend derives month-over-month growth. The first bucket, and any
// bucket following a zero month, reports zero growth.
func monthlyTrend(monthly []report.MonthlyTotal) []MonthlyTrendResponse {
	out := make([]MonthlyTrendResponse, len(monthly))
	for i, m := range monthly {
		growth := decimal.Zero
		if i > 0 && !monthly[i-1].Amount.IsZero() {
			growth = m.Amount.Sub(monthly[i-1].Amount).
				Div(monthly[i-1].Amount).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}
		out[i] = MonthlyTrendResponse{
			Month:      time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Amount:     toFloat64(m.Amount),
			OrderCount: m.OrderCount,
			Growth:     toFloat64(growth),
		}
	}
	return out
}

func supplierRanks(suppliers []report.SupplierTotal, windowTotal decimal.Decimal) []SupplierRankResponse {
	out := make([]SupplierRankResponse, len(suppliers))
	for i, sup := range suppliers {
		out[i] = SupplierRankResponse{
			Rank:           i + 1,
			SupplierID:     sup.SupplierID.String(),
			SupplierName:   sup.SupplierName,
			TotalPurchases: toFloat64(sup.TotalPurchases),
			TotalOrders:    sup.TotalOrders,
			Percentage:     toFloat64(percentage(sup.TotalPurchases, windowTotal)),
		}
	}
	return out
}

// categoryShares computes each category's share of total. topN <= 0 keeps
// every category.
func categoryShares(categories []report.CategoryTotal, total decimal.Decimal, topN int) []CategoryShareResponse {
	if topN > 0 && len(categories) > topN {
		categories = categories[:topN]
	}
	out := make([]CategoryShareResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryShareResponse{
			Category:   c.Category,
			Amount:     toFloat64(c.Amount),
			OrderCount: c.OrderCount,
			Percentage: toFloat64(percentage(c.Amount, total)),
		}
	}
	return out
}

// supplierRating tags suppliers by outstanding draft exposure
func supplierRating(sup report.SupplierTotal) string {
	if sup.OutstandingAmount.IsPositive() {
		return "delayed"
	}
	return "good"
}

// safeDiv divides a by b, returning zero when b is zero
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b).Round(2)
}

// percentage returns part/total*100 rounded to 2 places, zero when total
// is zero
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
