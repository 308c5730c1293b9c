package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseReportFilter defines the window for aggregation queries.
// TenantID is mandatory; nil dates mean an unbounded side.
type PurchaseReportFilter struct {
	TenantID  uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// LedgerTotals is the aggregate view over the order ledger for one window
type LedgerTotals struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	SupplierCount  int64           `json:"supplier_count"`
	PendingOrders  int64           `json:"pending_orders"`
}

// CategoryTotal is the summed line-item amount for one category
type CategoryTotal struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int64           `json:"order_count"`
}

// SupplierTotal is the per-supplier rollup of the ledger
type SupplierTotal struct {
	SupplierID        uuid.UUID       `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	TotalPurchases    decimal.Decimal `json:"total_purchases"`
	TotalOrders       int64           `json:"total_orders"`
	LastOrderDate     time.Time       `json:"last_order_date"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"` // draft orders only
}

// DailyTotal is one day bucket of purchase amounts
type DailyTotal struct {
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int64           `json:"order_count"`
}

// MonthlyTotal is one month bucket of purchase amounts
type MonthlyTotal struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int64           `json:"order_count"`
}

// PurchaseReportRepository is the set of named, parameterized query shapes
// the analytics engine runs. Each returns raw grouped sums; percentage and
// growth derivation happens in the application layer so it can be tested
// against fixtures without a live database.
type PurchaseReportRepository interface {
	// GetLedgerTotals returns order count, grand-total sum, distinct supplier
	// count and pending-order count within the window.
	GetLedgerTotals(ctx context.Context, filter PurchaseReportFilter) (*LedgerTotals, error)

	// GetDailyTotals returns per-day grand-total sums, ascending by date.
	GetDailyTotals(ctx context.Context, filter PurchaseReportFilter) ([]DailyTotal, error)

	// GetMonthlyTotals returns per-month grand-total sums, ascending.
	GetMonthlyTotals(ctx context.Context, filter PurchaseReportFilter) ([]MonthlyTotal, error)

	// GetCategoryTotals returns summed quantity*rate per line-item category,
	// descending by amount with category name as the tie-break key.
	GetCategoryTotals(ctx context.Context, filter PurchaseReportFilter) ([]CategoryTotal, error)

	// GetSupplierTotals returns per-supplier rollups, descending by amount
	// with supplier id as the tie-break key. topN <= 0 returns all suppliers.
	GetSupplierTotals(ctx context.Context, filter PurchaseReportFilter, topN int) ([]SupplierTotal, error)
}
