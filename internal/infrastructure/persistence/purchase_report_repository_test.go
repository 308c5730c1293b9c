package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sparesuite/backend/internal/domain/report"
)

// newMockDB returns a gorm handle backed by sqlmock, speaking the
// postgres dialect so the generated SQL matches production.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGetLedgerTotals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM purchase_orders po WHERE po\.tenant_id = \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_orders", "total_purchases", "supplier_count", "pending_orders",
		}).AddRow(3, "600", 2, 1))

	totals, err := repo.GetLedgerTotals(context.Background(), report.PurchaseReportFilter{TenantID: tenantID})
	require.NoError(t, err)

	assert.Equal(t, int64(3), totals.TotalOrders)
	assert.Equal(t, "600", totals.TotalPurchases.String())
	assert.Equal(t, int64(2), totals.SupplierCount)
	assert.Equal(t, int64(1), totals.PendingOrders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLedgerTotals_WindowBounds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(`po\.order_date >= \$\d+ AND po\.order_date <= \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_orders", "total_purchases", "supplier_count", "pending_orders",
		}).AddRow(0, "0", 0, 0))

	_, err := repo.GetLedgerTotals(context.Background(), report.PurchaseReportFilter{
		TenantID:  uuid.New(),
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCategoryTotals_Ordering(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)

	mock.ExpectQuery(`GROUP BY poi\.category ORDER BY amount DESC, category ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "amount", "order_count"}).
			AddRow("bearings", "400", 2).
			AddRow("filters", "200", 1))

	totals, err := repo.GetCategoryTotals(context.Background(), report.PurchaseReportFilter{TenantID: uuid.New()})
	require.NoError(t, err)

	require.Len(t, totals, 2)
	assert.Equal(t, "bearings", totals[0].Category)
	assert.Equal(t, "400", totals[0].Amount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSupplierTotals_TopN(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)
	supplierID := uuid.New()
	lastOrder := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY total_purchases DESC, supplier_id ASC LIMIT \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"supplier_id", "supplier_name", "total_purchases",
			"total_orders", "last_order_date", "outstanding_amount",
		}).AddRow(supplierID.String(), "Acme", "1000", 4, lastOrder, "100"))

	totals, err := repo.GetSupplierTotals(context.Background(), report.PurchaseReportFilter{TenantID: uuid.New()}, 10)
	require.NoError(t, err)

	require.Len(t, totals, 1)
	assert.Equal(t, supplierID, totals[0].SupplierID)
	assert.Equal(t, "100", totals[0].OutstandingAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSupplierTotals_NoLimitWhenZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)

	mock.ExpectQuery(`ORDER BY total_purchases DESC, supplier_id ASC$`).
		WillReturnRows(sqlmock.NewRows([]string{
			"supplier_id", "supplier_name", "total_purchases",
			"total_orders", "last_order_date", "outstanding_amount",
		}))

	totals, err := repo.GetSupplierTotals(context.Background(), report.PurchaseReportFilter{TenantID: uuid.New()}, 0)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMonthlyTotals_PostgresBuckets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormPurchaseReportRepository(db)

	mock.ExpectQuery(`EXTRACT\(YEAR FROM po\.order_date\)`).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "amount", "order_count"}).
			AddRow(2026, 7, "100", 1).
			AddRow(2026, 8, "150", 2))

	totals, err := repo.GetMonthlyTotals(context.Background(), report.PurchaseReportFilter{TenantID: uuid.New()})
	require.NoError(t, err)

	require.Len(t, totals, 2)
	assert.Equal(t, 2026, totals[0].Year)
	assert.Equal(t, 7, totals[0].Month)
	assert.Equal(t, "150", totals[1].Amount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
