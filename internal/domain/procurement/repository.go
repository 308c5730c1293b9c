package procurement

import (
	"context"

	"github.com/google/uuid"
)

// OrderPatch is the partial update applied by a bulk update. Nil fields
// are left untouched.
type OrderPatch struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	Notes         *string
}

// IsEmpty returns true if the patch changes nothing
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.Notes == nil
}

// PurchaseOrderRepository defines persistence operations for purchase orders.
// Every operation is tenant-scoped.
type PurchaseOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, query OrderQuery) ([]PurchaseOrder, error)
	Count(ctx context.Context, query OrderQuery) (int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// BulkUpdate applies the same patch to every matched order. Matching and
	// updating are atomic per document only; overlapping concurrent bulk
	// updates are last-write-wins per order. Returns the modified count.
	BulkUpdate(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID, patch OrderPatch) (int64, error)

	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SupplierRepository provides read access to suppliers for enrichment
type SupplierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}
