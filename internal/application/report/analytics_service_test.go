package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sparesuite/backend/internal/domain/report"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// MockPurchaseReportRepository is a mock implementation of PurchaseReportRepository
type MockPurchaseReportRepository struct {
	mock.Mock
}

func (m *MockPurchaseReportRepository) GetLedgerTotals(ctx context.Context, filter report.PurchaseReportFilter) (*report.LedgerTotals, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.LedgerTotals), args.Error(1)
}

func (m *MockPurchaseReportRepository) GetDailyTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.DailyTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.DailyTotal), args.Error(1)
}

func (m *MockPurchaseReportRepository) GetMonthlyTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.MonthlyTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MonthlyTotal), args.Error(1)
}

func (m *MockPurchaseReportRepository) GetCategoryTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.CategoryTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.CategoryTotal), args.Error(1)
}

func (m *MockPurchaseReportRepository) GetSupplierTotals(ctx context.Context, filter report.PurchaseReportFilter, topN int) ([]report.SupplierTotal, error) {
	args := m.Called(ctx, filter, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.SupplierTotal), args.Error(1)
}

func anyFilter() interface{} {
	return mock.AnythingOfType("report.PurchaseReportFilter")
}

func TestGetPurchaseStats_ThreeOrders(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)
	tenantID := uuid.New()

	// Orders of 100, 200 and 300 across two suppliers, one still pending
	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalOrders:    3,
		TotalPurchases: decimal.NewFromInt(600),
		SupplierCount:  2,
		PendingOrders:  1,
	}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{
		{Category: "bearings", Amount: decimal.NewFromInt(400), OrderCount: 2},
		{Category: "filters", Amount: decimal.NewFromInt(200), OrderCount: 1},
	}, nil)

	stats, err := service.GetPurchaseStats(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.InDelta(t, 600, stats.TotalPurchases, 0.001)
	assert.Equal(t, int64(2), stats.SupplierCount)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.InDelta(t, 200, stats.AvgOrderValue, 0.001)

	require.Len(t, stats.TopCategories, 2)
	assert.InDelta(t, 66.67, stats.TopCategories[0].Percentage, 0.01)
	assert.InDelta(t, 33.33, stats.TopCategories[1].Percentage, 0.01)
}

func TestGetPurchaseStats_EmptyTenant(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalPurchases: decimal.Zero,
	}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{}, nil)

	stats, err := service.GetPurchaseStats(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalPurchases)
	assert.Zero(t, stats.AvgOrderValue, "zero orders must never divide")
	assert.Empty(t, stats.TopCategories)
}

func TestGetPurchaseStats_TopFiveCategories(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	categories := make([]report.CategoryTotal, 8)
	total := decimal.Zero
	for i := range categories {
		amount := decimal.NewFromInt(int64(800 - i*100))
		categories[i] = report.CategoryTotal{Category: string(rune('a' + i)), Amount: amount}
		total = total.Add(amount)
	}

	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalOrders:    8,
		TotalPurchases: total,
	}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return(categories, nil)

	stats, err := service.GetPurchaseStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, stats.TopCategories, 5)

	sum := 0.0
	for _, c := range stats.TopCategories {
		assert.GreaterOrEqual(t, c.Percentage, 0.0)
		assert.LessOrEqual(t, c.Percentage, 100.0)
		sum += c.Percentage
	}
	assert.LessOrEqual(t, sum, 100.01)
}

func TestGetPurchaseAnalytics_UnknownPeriod(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	_, err := service.GetPurchaseAnalytics(context.Background(), uuid.New(), "century")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	repo.AssertNotCalled(t, "GetLedgerTotals")
}

func TestGetPurchaseAnalytics_MonthlyGrowth(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalOrders:    3,
		TotalPurchases: decimal.NewFromInt(150),
	}, nil)
	repo.On("GetDailyTotals", mock.Anything, anyFilter()).Return([]report.DailyTotal{}, nil)
	repo.On("GetMonthlyTotals", mock.Anything, anyFilter()).Return([]report.MonthlyTotal{
		{Year: 2026, Month: 1, Amount: decimal.NewFromInt(100)},
		{Year: 2026, Month: 2, Amount: decimal.Zero},
		{Year: 2026, Month: 3, Amount: decimal.NewFromInt(50)},
	}, nil)
	repo.On("GetSupplierTotals", mock.Anything, anyFilter(), 10).Return([]report.SupplierTotal{}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{}, nil)

	analytics, err := service.GetPurchaseAnalytics(context.Background(), uuid.New(), PeriodYear)
	require.NoError(t, err)

	require.Len(t, analytics.MonthlyTrend, 3)
	// First bucket has no predecessor; a zero predecessor yields zero, not infinity
	assert.InDelta(t, 0, analytics.MonthlyTrend[0].Growth, 0.001)
	assert.InDelta(t, -100, analytics.MonthlyTrend[1].Growth, 0.001)
	assert.InDelta(t, 0, analytics.MonthlyTrend[2].Growth, 0.001)

	assert.Equal(t, "2026-01", analytics.MonthlyTrend[0].Month)
	assert.Equal(t, "2026-03", analytics.MonthlyTrend[2].Month)
}

func TestGetPurchaseAnalytics_DailyTrendAndSuppliers(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	supplierID := uuid.New()

	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalOrders:    4,
		TotalPurchases: decimal.NewFromInt(150),
	}, nil)
	repo.On("GetDailyTotals", mock.Anything, anyFilter()).Return([]report.DailyTotal{
		{Date: day, Amount: decimal.NewFromInt(100), OrderCount: 2},
		{Date: day.AddDate(0, 0, 1), Amount: decimal.Zero, OrderCount: 0},
		{Date: day.AddDate(0, 0, 2), Amount: decimal.NewFromInt(50), OrderCount: 2},
	}, nil)
	repo.On("GetMonthlyTotals", mock.Anything, anyFilter()).Return([]report.MonthlyTotal{}, nil)
	repo.On("GetSupplierTotals", mock.Anything, anyFilter(), 10).Return([]report.SupplierTotal{
		{SupplierID: supplierID, SupplierName: "Acme", TotalPurchases: decimal.NewFromInt(150), TotalOrders: 4},
	}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{}, nil)

	analytics, err := service.GetPurchaseAnalytics(context.Background(), uuid.New(), PeriodWeek)
	require.NoError(t, err)

	require.Len(t, analytics.DailyTrend, 3)
	assert.Equal(t, "2026-08-15", analytics.DailyTrend[0].Date)

	// amounts 100, 0, 50: zero previous guards the last step to zero growth
	require.Len(t, analytics.PurchaseTrends, 3)
	assert.InDelta(t, 0, analytics.PurchaseTrends[0].Growth, 0.001)
	assert.InDelta(t, -100, analytics.PurchaseTrends[1].Growth, 0.001)
	assert.InDelta(t, 0, analytics.PurchaseTrends[2].Growth, 0.001)

	require.Len(t, analytics.TopSuppliers, 1)
	assert.Equal(t, 1, analytics.TopSuppliers[0].Rank)
	assert.InDelta(t, 100, analytics.TopSuppliers[0].Percentage, 0.001)
}

func TestGetPurchaseAnalytics_CategorySharesOfItemTotal(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	// Ledger grand total carries tax and freight (200) on item spend of 100;
	// category shares are relative to the item spend, not the grand total.
	repo.On("GetLedgerTotals", mock.Anything, anyFilter()).Return(&report.LedgerTotals{
		TotalOrders:    1,
		TotalPurchases: decimal.NewFromInt(200),
	}, nil)
	repo.On("GetDailyTotals", mock.Anything, anyFilter()).Return([]report.DailyTotal{}, nil)
	repo.On("GetMonthlyTotals", mock.Anything, anyFilter()).Return([]report.MonthlyTotal{}, nil)
	repo.On("GetSupplierTotals", mock.Anything, anyFilter(), 10).Return([]report.SupplierTotal{}, nil)
	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{
		{Category: "bearings", Amount: decimal.NewFromInt(100), OrderCount: 1},
	}, nil)

	analytics, err := service.GetPurchaseAnalytics(context.Background(), uuid.New(), PeriodMonth)
	require.NoError(t, err)

	require.Len(t, analytics.Categories, 1)
	assert.InDelta(t, 100, analytics.Categories[0].Percentage, 0.01)
}

func TestGetSupplierReport(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	repo.On("GetSupplierTotals", mock.Anything, anyFilter(), 0).Return([]report.SupplierTotal{
		{
			SupplierID:        uuid.New(),
			SupplierName:      "Acme",
			TotalPurchases:    decimal.NewFromInt(1000),
			TotalOrders:       4,
			OutstandingAmount: decimal.Zero,
		},
		{
			SupplierID:        uuid.New(),
			SupplierName:      "SlowParts",
			TotalPurchases:    decimal.NewFromInt(100),
			TotalOrders:       1,
			OutstandingAmount: decimal.NewFromInt(100),
		},
	}, nil)

	resp, err := service.GetSupplierReport(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Suppliers, 2)

	assert.InDelta(t, 250, resp.Suppliers[0].AvgOrderValue, 0.001)
	assert.Equal(t, "good", resp.Suppliers[0].Rating)
	assert.Equal(t, "delayed", resp.Suppliers[1].Rating)
}

func TestGetCategorySpend_ZeroTotal(t *testing.T) {
	repo := new(MockPurchaseReportRepository)
	service := NewAnalyticsService(repo)

	repo.On("GetCategoryTotals", mock.Anything, anyFilter()).Return([]report.CategoryTotal{}, nil)

	spend, err := service.GetCategorySpend(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, spend.TotalSpend)
	assert.Empty(t, spend.Categories)
}

func TestResolvePeriodStart(t *testing.T) {
	ref := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{PeriodWeek, ref.AddDate(0, 0, -7)},
		{PeriodMonth, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodQuarter, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := resolvePeriodStart(ref, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolvePeriodStart(ref, "fortnight")
	assert.Error(t, err)
}
