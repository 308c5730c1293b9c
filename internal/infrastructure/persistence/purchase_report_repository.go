package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sparesuite/backend/internal/domain/procurement"
	"github.com/sparesuite/backend/internal/domain/report"
)

// GormPurchaseReportRepository implements PurchaseReportRepository using
// GORM. Every method is one grouped aggregation over the order ledger.
type GormPurchaseReportRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReportRepository creates a new GormPurchaseReportRepository
func NewGormPurchaseReportRepository(db *gorm.DB) *GormPurchaseReportRepository {
	return &GormPurchaseReportRepository{db: db}
}

// GetLedgerTotals returns order count, purchase sum, distinct supplier
// count and pending order count within the window
func (r *GormPurchaseReportRepository) GetLedgerTotals(ctx context.Context, filter report.PurchaseReportFilter) (*report.LedgerTotals, error) {
	type totalsResult struct {
		TotalOrders    int64
		TotalPurchases decimal.Decimal
		SupplierCount  int64
		PendingOrders  int64
	}

	var result totalsResult
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Select(`
			COUNT(po.id) as total_orders,
			COALESCE(SUM(po.grand_total), 0) as total_purchases,
			COUNT(DISTINCT po.supplier_id) as supplier_count,
			COUNT(CASE WHEN po.status IN ? THEN 1 END) as pending_orders
		`, procurement.PendingStatuses).
		Where("po.tenant_id = ?", filter.TenantID)
	query = applyWindow(query, "po.order_date", filter)

	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	return &report.LedgerTotals{
		TotalOrders:    result.TotalOrders,
		TotalPurchases: result.TotalPurchases,
		SupplierCount:  result.SupplierCount,
		PendingOrders:  result.PendingOrders,
	}, nil
}

// GetDailyTotals returns per-day purchase sums, ascending by date
func (r *GormPurchaseReportRepository) GetDailyTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.DailyTotal, error) {
	type dailyResult struct {
		Date       time.Time
		Amount     decimal.Decimal
		OrderCount int64
	}

	var results []dailyResult
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Select(`
			DATE(po.order_date) as date,
			COALESCE(SUM(po.grand_total), 0) as amount,
			COUNT(po.id) as order_count
		`).
		Where("po.tenant_id = ?", filter.TenantID)
	query = applyWindow(query, "po.order_date", filter)

	if err := query.Group("DATE(po.order_date)").Order("date ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	totals := make([]report.DailyTotal, len(results))
	for i, row := range results {
		totals[i] = report.DailyTotal{
			Date:       row.Date,
			Amount:     row.Amount,
			OrderCount: row.OrderCount,
		}
	}
	return totals, nil
}

// GetMonthlyTotals returns per-month purchase sums, ascending
func (r *GormPurchaseReportRepository) GetMonthlyTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.MonthlyTotal, error) {
	type monthlyResult struct {
		Year       int
		Month      int
		Amount     decimal.Decimal
		OrderCount int64
	}

	// sqlite has no EXTRACT; pick the bucket expressions per dialect
	yearExpr := "CAST(STRFTIME('%Y', po.order_date) AS INTEGER)"
	monthExpr := "CAST(STRFTIME('%m', po.order_date) AS INTEGER)"
	if r.db.Dialector.Name() == "postgres" {
		yearExpr = "CAST(EXTRACT(YEAR FROM po.order_date) AS INTEGER)"
		monthExpr = "CAST(EXTRACT(MONTH FROM po.order_date) AS INTEGER)"
	}

	var results []monthlyResult
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Select(yearExpr + ` as year,
			` + monthExpr + ` as month,
			COALESCE(SUM(po.grand_total), 0) as amount,
			COUNT(po.id) as order_count`).
		Where("po.tenant_id = ?", filter.TenantID)
	query = applyWindow(query, "po.order_date", filter)

	if err := query.Group("year, month").Order("year ASC, month ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	totals := make([]report.MonthlyTotal, len(results))
	for i, row := range results {
		totals[i] = report.MonthlyTotal{
			Year:       row.Year,
			Month:      row.Month,
			Amount:     row.Amount,
			OrderCount: row.OrderCount,
		}
	}
	return totals, nil
}

// GetCategoryTotals returns summed line-item spend per category, largest
// first with the category name breaking ties deterministically
func (r *GormPurchaseReportRepository) GetCategoryTotals(ctx context.Context, filter report.PurchaseReportFilter) ([]report.CategoryTotal, error) {
	type categoryResult struct {
		Category   string
		Amount     decimal.Decimal
		OrderCount int64
	}

	var results []categoryResult
	query := r.db.WithContext(ctx).Table("purchase_order_items poi").
		Select(`
			poi.category as category,
			COALESCE(SUM(poi.line_total), 0) as amount,
			COUNT(DISTINCT poi.order_id) as order_count
		`).
		Joins("JOIN purchase_orders po ON po.id = poi.order_id").
		Where("po.tenant_id = ?", filter.TenantID)
	query = applyWindow(query, "po.order_date", filter)

	if err := query.Group("poi.category").
		Order("amount DESC, category ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	totals := make([]report.CategoryTotal, len(results))
	for i, row := range results {
		totals[i] = report.CategoryTotal{
			Category:   row.Category,
			Amount:     row.Amount,
			OrderCount: row.OrderCount,
		}
	}
	return totals, nil
}

// GetSupplierTotals returns per-supplier rollups, largest spend first with
// the supplier id breaking ties deterministically. topN <= 0 returns all.
func (r *GormPurchaseReportRepository) GetSupplierTotals(ctx context.Context, filter report.PurchaseReportFilter, topN int) ([]report.SupplierTotal, error) {
	type supplierResult struct {
		SupplierID        uuid.UUID
		SupplierName      string
		TotalPurchases    decimal.Decimal
		TotalOrders       int64
		LastOrderDate     time.Time
		OutstandingAmount decimal.Decimal
	}

	var results []supplierResult
	query := r.db.WithContext(ctx).Table("purchase_orders po").
		Select(`
			po.supplier_id as supplier_id,
			MAX(po.supplier_name) as supplier_name,
			COALESCE(SUM(po.grand_total), 0) as total_purchases,
			COUNT(po.id) as total_orders,
			MAX(po.created_at) as last_order_date,
			COALESCE(SUM(CASE WHEN po.status = ? THEN po.grand_total ELSE 0 END), 0) as outstanding_amount
		`, procurement.OrderStatusDraft).
		Where("po.tenant_id = ?", filter.TenantID)
	query = applyWindow(query, "po.order_date", filter)
	query = query.Group("po.supplier_id").
		Order("total_purchases DESC, supplier_id ASC")
	if topN > 0 {
		query = query.Limit(topN)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	totals := make([]report.SupplierTotal, len(results))
	for i, row := range results {
		totals[i] = report.SupplierTotal{
			SupplierID:        row.SupplierID,
			SupplierName:      row.SupplierName,
			TotalPurchases:    row.TotalPurchases,
			TotalOrders:       row.TotalOrders,
			LastOrderDate:     row.LastOrderDate,
			OutstandingAmount: row.OutstandingAmount,
		}
	}
	return totals, nil
}

// applyWindow adds the optional date bounds of the filter
func applyWindow(query *gorm.DB, column string, filter report.PurchaseReportFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where(column+" >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where(column+" <= ?", *filter.EndDate)
	}
	return query
}
