package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sparesuite/backend/internal/domain/shared"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "DRAFT"
	OrderStatusPendingApproval OrderStatus = "PENDING_APPROVAL"
	OrderStatusSent            OrderStatus = "SENT"
	OrderStatusAcknowledged    OrderStatus = "ACKNOWLEDGED"
	OrderStatusReceived        OrderStatus = "RECEIVED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// PendingStatuses is the set of statuses counted as "pending" in statistics
var PendingStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPendingApproval,
	OrderStatusSent,
	OrderStatusAcknowledged,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPendingApproval, OrderStatusSent,
		OrderStatusAcknowledged, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// IsPending returns true if the status belongs to the pending set
func (s OrderStatus) IsPending() bool {
	for _, p := range PendingStatuses {
		if s == p {
			return true
		}
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// The lifecycle is strictly forward; CANCELLED is reachable from any
// non-terminal state. All transitions are caller-driven.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusPendingApproval
	case OrderStatusPendingApproval:
		return target == OrderStatusSent
	case OrderStatusSent:
		return target == OrderStatusAcknowledged
	case OrderStatusAcknowledged:
		return target == OrderStatusReceived
	}
	return false
}

// ParseOrderStatus parses a lowercase or uppercase status string
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(normalizeEnum(raw))
	if !status.IsValid() {
		return "", shared.NewInvalidArgument(fmt.Sprintf("Unknown order status %q", raw))
	}
	return status, nil
}

// PaymentStatus tracks payment independently of the order lifecycle
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusDelayed PaymentStatus = "DELAYED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusDelayed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus parses a lowercase or uppercase payment status string
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	status := PaymentStatus(normalizeEnum(raw))
	if !status.IsValid() {
		return "", shared.NewInvalidArgument(fmt.Sprintf("Unknown payment status %q", raw))
	}
	return status, nil
}

// OrderItem represents a line item in a purchase order
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName  string          `gorm:"type:varchar(200);not null"`
	Category  string          `gorm:"type:varchar(100);not null;index"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * Rate, derived
	Remark    string          `gorm:"type:varchar(500)"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "purchase_order_items"
}

// NewOrderItem creates a new order line item. LineTotal is always derived
// from quantity and rate, never accepted from the caller.
func NewOrderItem(orderID uuid.UUID, itemName, category, unit string, quantity, rate decimal.Decimal) (*OrderItem, error) {
	if itemName == "" {
		return nil, shared.NewInvalidArgument("Item name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewInvalidArgument("Quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewInvalidArgument("Rate cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ItemName:  itemName,
		Category:  category,
		Unit:      unit,
		Quantity:  quantity,
		Rate:      rate,
		LineTotal: quantity.Mul(rate),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateQuantity updates the quantity and recalculates the line total
func (i *OrderItem) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewInvalidArgument("Quantity must be positive")
	}
	i.Quantity = quantity
	i.LineTotal = quantity.Mul(i.Rate)
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateRate updates the rate and recalculates the line total
func (i *OrderItem) UpdateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewInvalidArgument("Rate cannot be negative")
	}
	i.Rate = rate
	i.LineTotal = i.Quantity.Mul(rate)
	i.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder represents a purchase order aggregate root.
// All monetary summary fields are derived: they are recomputed whenever
// items or charges change and are never trusted from caller input.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber      string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	SupplierName     string      `gorm:"type:varchar(200);not null"`
	SupplierCategory string      `gorm:"type:varchar(100)"`
	Items            []OrderItem `gorm:"foreignKey:OrderID;references:ID"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxableAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"` // percentage
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FreightCharges decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PackingCharges decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherCharges   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RoundingAdj    decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	OrderDate     time.Time     `gorm:"not null;index"`
	Notes         string        `gorm:"type:text"`
	CreatedBy     *uuid.UUID    `gorm:"type:uuid"`
	ReceivedAt    *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in DRAFT status
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName, supplierCategory string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewInvalidArgument("Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewInvalidArgument("Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewInvalidArgument("Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewInvalidArgument("Supplier name cannot be empty")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		SupplierCategory:    supplierCategory,
		Items:               make([]OrderItem, 0),
		Status:              OrderStatusDraft,
		PaymentStatus:       PaymentStatusPending,
		OrderDate:           time.Now(),
	}
	order.recalculateTotals()
	return order, nil
}

// AddItem adds a new line item. Only allowed in DRAFT status.
func (o *PurchaseOrder) AddItem(itemName, category, unit string, quantity, rate decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewOrderItem(o.ID, itemName, category, unit, quantity, rate)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.touch()
	return item, nil
}

// RemoveItem removes a line item. Only allowed in DRAFT status.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.touch()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Order item not found")
}

// UpdateItem updates quantity and/or rate of a line item. Only in DRAFT status.
func (o *PurchaseOrder) UpdateItem(itemID uuid.UUID, quantity, rate *decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft order")
	}
	for idx := range o.Items {
		if o.Items[idx].ID != itemID {
			continue
		}
		if quantity != nil {
			if err := o.Items[idx].UpdateQuantity(*quantity); err != nil {
				return err
			}
		}
		if rate != nil {
			if err := o.Items[idx].UpdateRate(*rate); err != nil {
				return err
			}
		}
		o.recalculateTotals()
		o.touch()
		return nil
	}
	return shared.NewDomainError("NOT_FOUND", "Order item not found")
}

// Charges bundles the order-level adjustments applied on top of line totals
type Charges struct {
	Discount decimal.Decimal
	TaxRate  decimal.Decimal // percentage
	Freight  decimal.Decimal
	Packing  decimal.Decimal
	Other    decimal.Decimal
	Rounding decimal.Decimal
}

// ApplyCharges sets order-level discount/tax/charges and recomputes totals.
// Only allowed while the order is still modifiable (DRAFT).
func (o *PurchaseOrder) ApplyCharges(c Charges) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges on a non-draft order")
	}
	if c.Discount.IsNegative() || c.TaxRate.IsNegative() ||
		c.Freight.IsNegative() || c.Packing.IsNegative() || c.Other.IsNegative() {
		return shared.NewInvalidArgument("Charges cannot be negative")
	}
	if c.Discount.GreaterThan(o.Subtotal) {
		return shared.NewInvalidArgument("Discount cannot exceed subtotal")
	}

	o.DiscountAmount = c.Discount
	o.TaxRate = c.TaxRate
	o.FreightCharges = c.Freight
	o.PackingCharges = c.Packing
	o.OtherCharges = c.Other
	o.RoundingAdj = c.Rounding
	o.recalculateTotals()
	o.touch()
	return nil
}

// SetNotes sets the free-text notes
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.touch()
}

// SetCreatedBy records the acting user
func (o *PurchaseOrder) SetCreatedBy(userID uuid.UUID) {
	o.CreatedBy = &userID
}

// TransitionTo moves the order to the target status, validating the
// transition table. RECEIVED and CANCELLED set their timestamps.
func (o *PurchaseOrder) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewInvalidArgument(fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}
	if target == OrderStatusReceived && len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot receive an order without items")
	}

	now := time.Now()
	o.Status = target
	switch target {
	case OrderStatusReceived:
		o.ReceivedAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
	}
	o.touch()
	return nil
}

// Cancel cancels the order with a reason. Allowed from any non-terminal state.
func (o *PurchaseOrder) Cancel(reason string) error {
	if reason == "" {
		return shared.NewInvalidArgument("Cancel reason is required")
	}
	if err := o.TransitionTo(OrderStatusCancelled); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// SetPaymentStatus updates the payment status. Payment tracking is
// orthogonal to the order lifecycle and allowed in any state.
func (o *PurchaseOrder) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewInvalidArgument(fmt.Sprintf("Unknown payment status %q", status))
	}
	o.PaymentStatus = status
	o.touch()
	return nil
}

// recalculateTotals recomputes the derived monetary summary:
// subtotal = sum of line totals; taxable = subtotal - discount;
// grandTotal = taxable + tax + freight + packing + other + rounding.
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal

	if o.DiscountAmount.GreaterThan(subtotal) {
		o.DiscountAmount = subtotal
	}
	o.TaxableAmount = subtotal.Sub(o.DiscountAmount)
	o.TaxAmount = o.TaxableAmount.Mul(o.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	o.GrandTotal = o.TaxableAmount.
		Add(o.TaxAmount).
		Add(o.FreightCharges).
		Add(o.PackingCharges).
		Add(o.OtherCharges).
		Add(o.RoundingAdj)
}

func (o *PurchaseOrder) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// ItemCount returns the number of line items
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is still a draft
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsTerminal returns true if the order reached a terminal state
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// CanModify returns true if items and charges can still change
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}
