package procurement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sparesuite/backend/internal/domain/procurement"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// StockUpdater adjusts inventory when received orders bring goods in.
// Implemented by the inventory persistence layer.
type StockUpdater interface {
	IncreaseStock(ctx context.Context, tenantID uuid.UUID, itemName, category, unit string, quantity decimal.Decimal) error
}

// StatsInvalidator drops cached analytics snapshots after a write.
// Implemented by the stats cache.
type StatsInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo    procurement.PurchaseOrderRepository
	supplierRepo procurement.SupplierRepository
	stockUpdater StockUpdater
	invalidator  StatsInvalidator
	logger       *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo procurement.PurchaseOrderRepository) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		logger:    zap.NewNop(),
	}
}

// SetLogger wires the service logger
func (s *PurchaseOrderService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetSupplierRepository wires supplier lookups for name/category enrichment
func (s *PurchaseOrderService) SetSupplierRepository(repo procurement.SupplierRepository) {
	s.supplierRepo = repo
}

// SetStockUpdater wires inventory updates for received orders
func (s *PurchaseOrderService) SetStockUpdater(updater StockUpdater) {
	s.stockUpdater = updater
}

// SetStatsInvalidator wires analytics cache invalidation after writes
func (s *PurchaseOrderService) SetStatsInvalidator(invalidator StatsInvalidator) {
	s.invalidator = invalidator
}

// Create creates a new draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if req.SupplierID == uuid.Nil {
		return nil, shared.NewInvalidArgument("Supplier ID is required")
	}
	if len(req.Items) == 0 {
		return nil, shared.NewInvalidArgument("Order must have at least one item")
	}

	supplierName, supplierCategory := req.SupplierName, req.SupplierCategory
	if supplierName == "" && s.supplierRepo != nil {
		supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, req.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierName = supplier.Name
		if supplierCategory == "" {
			supplierCategory = supplier.Category
		}
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := procurement.NewPurchaseOrder(tenantID, orderNumber, req.SupplierID, supplierName, supplierCategory)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := order.AddItem(item.ItemName, item.Category, item.Unit, item.Quantity, item.Rate); err != nil {
			return nil, err
		}
	}

	charges := currentCharges(order)
	mergeCharges(&charges, req.Discount, req.TaxRate, req.Freight, req.Packing, req.Other, req.Rounding)
	if err := order.ApplyCharges(charges); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}
	if req.CreatedBy != nil {
		order.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, tenantID)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a single order within the tenant scope
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns a filtered, paginated page of orders. Raw filter parameters
// are validated here; a malformed filter fails the whole request.
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, params procurement.OrderQueryParams) (*shared.Paginated[OrderResponse], error) {
	query, err := procurement.BuildOrderQuery(tenantID, params)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToOrderResponses(orders), total, query.Page, query.Limit)
	return &page, nil
}

// Update mutates an order. Item and charge changes require a draft order;
// a status change is applied last, against the state machine.
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if req.Items != nil {
		if !order.IsDraft() {
			return nil, shared.NewDomainError("INVALID_STATE", "Items can only be changed on draft orders")
		}
		for _, existing := range append([]procurement.OrderItem(nil), order.Items...) {
			if err := order.RemoveItem(existing.ID); err != nil {
				return nil, err
			}
		}
		for _, item := range req.Items {
			if _, err := order.AddItem(item.ItemName, item.Category, item.Unit, item.Quantity, item.Rate); err != nil {
				return nil, err
			}
		}
	}

	if req.Discount != nil || req.TaxRate != nil || req.Freight != nil || req.Packing != nil || req.Other != nil || req.Rounding != nil {
		charges := currentCharges(order)
		mergeCharges(&charges, req.Discount, req.TaxRate, req.Freight, req.Packing, req.Other, req.Rounding)
		if err := order.ApplyCharges(charges); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		order.SetNotes(*req.Notes)
	}

	if req.Status != nil {
		target, err := procurement.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if err := s.applyTransition(ctx, order, target); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, tenantID)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus moves a single order through the state machine
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, rawStatus string) (*OrderResponse, error) {
	target, err := procurement.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, order, target); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, tenantID)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels a non-terminal order
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, tenantID)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// SetPaymentStatus updates the payment status independent of the lifecycle
func (s *PurchaseOrderService) SetPaymentStatus(ctx context.Context, tenantID, orderID uuid.UUID, rawStatus string) (*OrderResponse, error) {
	status, err := procurement.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.SetPaymentStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, tenantID)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete hard-deletes an order within the tenant scope. Any status may be
// deleted; the ledger keeps no tombstone.
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	if err := s.orderRepo.DeleteForTenant(ctx, tenantID, orderID); err != nil {
		return err
	}
	s.invalidateStats(ctx, tenantID)
	return nil
}

// BulkUpdateResult reports how many orders a bulk update touched
type BulkUpdateResult struct {
	MatchedCount  int   `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
}

// BulkUpdate applies one patch to many orders at once. An empty id list is
// a caller error; a patch that modifies nothing (unknown ids or values
// already in place) reports NOTHING_TO_UPDATE rather than silent success.
func (s *PurchaseOrderService) BulkUpdate(ctx context.Context, tenantID uuid.UUID, req BulkUpdateRequest) (*BulkUpdateResult, error) {
	if len(req.OrderIDs) == 0 {
		return nil, shared.NewInvalidArgument("Order ID list cannot be empty")
	}

	var patch procurement.OrderPatch
	if req.Status != nil {
		status, err := procurement.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	if req.PaymentStatus != nil {
		status, err := procurement.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, err
		}
		patch.PaymentStatus = &status
	}
	patch.Notes = req.Notes

	if patch.IsEmpty() {
		return nil, shared.NewInvalidArgument("Bulk update must set at least one field")
	}

	// Terminal targets carry side effects a set-based UPDATE cannot run:
	// RECEIVED posts items into inventory and both set their timestamps.
	// Those go through the aggregate one order at a time.
	if patch.Status != nil && patch.Status.IsTerminal() {
		return s.bulkTransition(ctx, tenantID, req.OrderIDs, patch)
	}

	modified, err := s.orderRepo.BulkUpdate(ctx, tenantID, req.OrderIDs, patch)
	if err != nil {
		return nil, err
	}
	if modified == 0 {
		return nil, shared.ErrNothingToUpdate
	}
	s.invalidateStats(ctx, tenantID)

	return &BulkUpdateResult{
		MatchedCount:  len(req.OrderIDs),
		ModifiedCount: modified,
	}, nil
}

// bulkTransition applies a terminal-status patch by loading each order and
// running it through the state machine. Unknown ids and orders the machine
// cannot move into the target are skipped, matching the set-based path.
func (s *PurchaseOrderService) bulkTransition(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID, patch procurement.OrderPatch) (*BulkUpdateResult, error) {
	var modified int64
	for _, orderID := range orderIDs {
		order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !order.Status.CanTransitionTo(*patch.Status) {
			continue
		}
		if err := s.applyTransition(ctx, order, *patch.Status); err != nil {
			return nil, err
		}
		if patch.PaymentStatus != nil {
			if err := order.SetPaymentStatus(*patch.PaymentStatus); err != nil {
				return nil, err
			}
		}
		if patch.Notes != nil {
			order.SetNotes(*patch.Notes)
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			return nil, err
		}
		modified++
	}
	if modified == 0 {
		return nil, shared.ErrNothingToUpdate
	}
	s.invalidateStats(ctx, tenantID)

	return &BulkUpdateResult{
		MatchedCount:  len(orderIDs),
		ModifiedCount: modified,
	}, nil
}

// applyTransition runs the state machine and, on RECEIVED, posts each line
// item into inventory.
func (s *PurchaseOrderService) applyTransition(ctx context.Context, order *procurement.PurchaseOrder, target procurement.OrderStatus) error {
	if err := order.TransitionTo(target); err != nil {
		return err
	}
	if target == procurement.OrderStatusReceived && s.stockUpdater != nil {
		for _, item := range order.Items {
			if err := s.stockUpdater.IncreaseStock(ctx, order.TenantID, item.ItemName, item.Category, item.Unit, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// invalidateStats drops the tenant's cached stats snapshot. A failed
// invalidation is logged and the write proceeds; the snapshot ages out
// with its TTL.
func (s *PurchaseOrderService) invalidateStats(ctx context.Context, tenantID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateTenant(ctx, tenantID); err != nil {
		s.logger.Warn("stats cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}

func currentCharges(order *procurement.PurchaseOrder) procurement.Charges {
	return procurement.Charges{
		Discount: order.DiscountAmount,
		TaxRate:  order.TaxRate,
		Freight:  order.FreightCharges,
		Packing:  order.PackingCharges,
		Other:    order.OtherCharges,
		Rounding: order.RoundingAdj,
	}
}

func mergeCharges(charges *procurement.Charges, discount, taxRate, freight, packing, other, rounding *decimal.Decimal) {
	if discount != nil {
		charges.Discount = *discount
	}
	if taxRate != nil {
		charges.TaxRate = *taxRate
	}
	if freight != nil {
		charges.Freight = *freight
	}
	if packing != nil {
		charges.Packing = *packing
	}
	if other != nil {
		charges.Other = *other
	}
	if rounding != nil {
		charges.Rounding = *rounding
	}
}
