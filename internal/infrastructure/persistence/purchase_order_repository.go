package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparesuite/backend/internal/domain/procurement"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns the page of orders matching the query, newest first
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, query procurement.OrderQuery) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	q := r.applyQuery(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), query).
		Preload("Items").
		Order("order_date DESC, order_number DESC").
		Offset(query.Offset()).
		Limit(query.Limit)
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the query, ignoring pagination
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, query procurement.OrderQuery) (int64, error) {
	var count int64
	q := r.applyQuery(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), query)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the order and replaces its line items in one transaction
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: false}).
			Omit("Items").Save(order).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&procurement.OrderItem{}).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return tx.Create(&order.Items).Error
	})
}

// DeleteForTenant removes an order and its items within a tenant
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&procurement.PurchaseOrder{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&procurement.OrderItem{}).Error
	})
}

// BulkUpdate applies the patch to every matched order in one statement and
// returns the modified row count
func (r *GormPurchaseOrderRepository) BulkUpdate(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID, patch procurement.OrderPatch) (int64, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	q := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).
		Where("tenant_id = ? AND id IN ?", tenantID, orderIDs)
	if patch.Status != nil {
		// A bulk status change only moves orders the state machine allows
		// into the target; ineligible rows are skipped, not failed.
		q = q.Where("status IN ?", eligibleSourceStatuses(*patch.Status))
	}

	result := q.Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// eligibleSourceStatuses returns the statuses that may transition into
// target, mirroring the aggregate's state machine
func eligibleSourceStatuses(target procurement.OrderStatus) []procurement.OrderStatus {
	all := []procurement.OrderStatus{
		procurement.OrderStatusDraft,
		procurement.OrderStatusPendingApproval,
		procurement.OrderStatusSent,
		procurement.OrderStatusAcknowledged,
		procurement.OrderStatusReceived,
		procurement.OrderStatusCancelled,
	}
	var eligible []procurement.OrderStatus
	for _, s := range all {
		if s.CanTransitionTo(target) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

// GenerateOrderNumber generates a unique order number for a tenant.
// Format: PO-YYYY-NNNNN (e.g., PO-2026-00001)
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().UTC().Year()
	prefix := fmt.Sprintf("PO-%d-", year)

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Select("order_number").
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Scan(&lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyQuery translates a validated OrderQuery into WHERE clauses. The
// search term arrives already escaped; ESCAPE makes the backslash explicit
// for both postgres and sqlite.
func (r *GormPurchaseOrderRepository) applyQuery(q *gorm.DB, query procurement.OrderQuery) *gorm.DB {
	q = q.Where("tenant_id = ?", query.TenantID)

	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.SupplierID != nil {
		q = q.Where("supplier_id = ?", *query.SupplierID)
	}
	if query.Category != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM purchase_order_items i WHERE i.order_id = purchase_orders.id AND i.category = ?)",
			query.Category,
		)
	}
	if query.DateFrom != nil {
		q = q.Where("order_date >= ?", *query.DateFrom)
	}
	if query.DateTo != nil {
		q = q.Where("order_date <= ?", *query.DateTo)
	}
	if query.Search != "" {
		// case-insensitive across both dialects without ILIKE
		pattern := "%" + strings.ToLower(query.Search) + "%"
		q = q.Where(
			"(LOWER(order_number) LIKE ? ESCAPE '\\' OR LOWER(supplier_name) LIKE ? ESCAPE '\\' OR LOWER(notes) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}
	return q
}
